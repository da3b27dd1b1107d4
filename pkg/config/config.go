// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the optional TOML runtime config for a serving process. It
// never declares endpoints; those come from code. It only tunes the
// transport surface around them.
type Config struct {
	Server ServerConfig  `toml:"server"`
	Routes []RoutePolicy `toml:"route"`
}

type ServerConfig struct {
	Listen  string `toml:"listen"`
	TLSCert string `toml:"tls_cert"`
	TLSKey  string `toml:"tls_key"`
}

// RoutePolicy tunes dispatch for one route path.
type RoutePolicy struct {
	Path      string     `toml:"path"`
	TimeoutMS int        `toml:"timeout_ms"`
	RateLimit *RateLimit `toml:"rate_limit"`
}

type RateLimit struct {
	RPS   int `toml:"rps"`
	Burst int `toml:"burst"`
}

// Load reads and validates a config file. An empty path yields the zero
// config: every setting has a serving default.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalizes route paths and rejects nonsense values.
func (c *Config) Validate() error {
	seen := map[string]struct{}{}
	for i := range c.Routes {
		rp := &c.Routes[i]
		if err := rp.normalize(); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
		if _, dup := seen[rp.Path]; dup {
			return fmt.Errorf("route %d: duplicate policy for path %q", i, rp.Path)
		}
		seen[rp.Path] = struct{}{}
	}
	return nil
}

func (rp *RoutePolicy) normalize() error {
	if rp.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(rp.Path, "/") {
		rp.Path = "/" + rp.Path
	}
	if rp.Path != "/" {
		rp.Path = path.Clean(rp.Path)
	}
	if rp.TimeoutMS < 0 {
		return errors.New("timeout_ms must be >= 0")
	}
	if rl := rp.RateLimit; rl != nil {
		if rl.RPS <= 0 {
			return errors.New("rate_limit.rps must be > 0")
		}
		if rl.Burst <= 0 {
			rl.Burst = rl.RPS
		}
	}
	return nil
}

// PolicyFor returns the policy for a route path, if any.
func (c Config) PolicyFor(path string) (RoutePolicy, bool) {
	for _, rp := range c.Routes {
		if rp.Path == path {
			return rp, true
		}
	}
	return RoutePolicy{}, false
}
