// pkg/serverfx/serverfx.go
package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/svishnu88/jlserve/pkg/buildcache"
	"github.com/svishnu88/jlserve/pkg/config"
	"github.com/svishnu88/jlserve/pkg/lifecycle"
	"github.com/svishnu88/jlserve/pkg/middleware/logger"
	"github.com/svishnu88/jlserve/pkg/middleware/metrics"
	"github.com/svishnu88/jlserve/pkg/registry"
	"github.com/svishnu88/jlserve/pkg/router"
	"github.com/svishnu88/jlserve/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service       string // for logs only
	ListenEnv     string // e.g. JLSERVE_LISTEN_ADDRESS
	DefaultListen string // e.g. ":8000"
	ConfigEnv     string // e.g. JLSERVE_CONFIG
	DefaultConfig string // optional TOML runtime config path
	TLSCertEnv    string
	TLSKeyEnv     string
	// RequireBuildMarker refuses to serve unless the build workflow has
	// recorded completion in the cache directory.
	RequireBuildMarker bool
}

type Option func(*Config)

func WithService(s string) Option          { return func(c *Config) { c.Service = s } }
func WithListenEnv(k string) Option        { return func(c *Config) { c.ListenEnv = k } }
func WithDefaultListen(addr string) Option { return func(c *Config) { c.DefaultListen = addr } }
func WithConfigEnv(k string) Option        { return func(c *Config) { c.ConfigEnv = k } }
func WithDefaultConfig(path string) Option { return func(c *Config) { c.DefaultConfig = path } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}
func WithBuildMarkerRequired(on bool) Option {
	return func(c *Config) { c.RequireBuildMarker = on }
}

func defaultConfig() Config {
	return Config{
		Service:            "jlserve",
		ListenEnv:          "JLSERVE_LISTEN_ADDRESS",
		DefaultListen:      ":8000",
		ConfigEnv:          "JLSERVE_CONFIG",
		TLSCertEnv:         "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:          "SSL_SERVER_KEY",
		RequireBuildMarker: true,
	}
}

// Module assembles a complete serving process around reg: logger, metrics,
// chi router, lifecycle manager dispatching against the single shared
// instance, and the HTTP server lifecycle.
func Module(reg *registry.Registry, opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		logger.Module,
		metrics.Module,
		fx.Provide(httpx.NewChi),
		fx.Provide(func() Config { return cfg }),
		fx.Provide(func() *registry.Registry { return reg }),
		fx.Provide(provideRuntimeConfig),
		fx.Provide(provideManager),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, ``, `name:"metrics"`, ``, ``),
			fx.ResultTags(`name:"app"`),
		)),
		fx.Invoke(registerHooks),
	)
}

func provideRuntimeConfig(cfg Config, zl *zap.Logger) (config.Config, error) {
	path := envOr(cfg.ConfigEnv, cfg.DefaultConfig)
	rc, err := config.Load(path)
	if err != nil {
		zl.Error("runtime config load failed", zap.Error(err), zap.String("path", path))
		return config.Config{}, err
	}
	return rc, nil
}

func provideManager(reg *registry.Registry, zl *zap.Logger) *lifecycle.Manager {
	return lifecycle.NewManager(reg, zl)
}

// provideRouter fails fast: validation and construction errors abort fx
// wiring before any listener exists.
func provideRouter(
	reg *registry.Registry,
	mgr *lifecycle.Manager,
	rc config.Config,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	r httpx.Router,
	zl *zap.Logger,
) (http.Handler, error) {
	if err := mgr.Validate(); err != nil {
		zl.Error("app validation failed", zap.Error(err))
		return nil, err
	}
	if err := mgr.Construct(); err != nil {
		zl.Error("app construction failed", zap.Error(err))
		return nil, err
	}
	return router.BuildRouter(reg, mgr, router.BuildDeps{
		LogMW:   lm,
		Metrics: m,
		Router:  r,
		Runtime: rc,
	}), nil
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	Mgr    *lifecycle.Manager
	Reg    *registry.Registry
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, rc config.Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, cfg.DefaultListen)
	if rc.Server.Listen != "" {
		addr = rc.Server.Listen
	}
	cert := firstNonEmpty(rc.Server.TLSCert, os.Getenv(cfg.TLSCertEnv))
	key := firstNonEmpty(rc.Server.TLSKey, os.Getenv(cfg.TLSKeyEnv))

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if cfg.RequireBuildMarker {
				cacheDir, err := buildcache.CacheDir()
				if err != nil {
					return err
				}
				if err := buildcache.RequireMarker(cacheDir); err != nil {
					return err
				}
			}

			// Startup hook completes here, strictly before the listener
			// goroutine exists. No dispatch can observe a half-initialized
			// instance.
			if err := d.Mgr.Start(); err != nil {
				return err
			}

			app, err := d.Reg.App()
			if err != nil {
				return err
			}
			routes := make([]string, 0, len(d.Reg.Endpoints()))
			for _, ep := range d.Reg.Endpoints() {
				routes = append(routes, "POST "+ep.Path)
			}

			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("app", app.Name),
					zap.String("addr", addr),
					zap.Strings("endpoints", routes),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", cfg.Service),
					zap.String("app", app.Name),
					zap.String("addr", addr),
					zap.Strings("endpoints", routes),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return d.Mgr.Serve()
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			err := srv.Shutdown(ctx)
			if stopErr := d.Mgr.Stop(); stopErr != nil {
				d.Logger.Warn("lifecycle stop", zap.Error(stopErr))
			}
			return err
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if k == "" {
		return def
	}
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
