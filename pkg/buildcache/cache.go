// pkg/buildcache/cache.go
package buildcache

import (
	"errors"
	"fmt"
	"os"
)

// EnvCacheDir is the environment variable naming the shared cache
// directory for model weights and installed dependencies.
const EnvCacheDir = "JLSERVE_CACHE_DIR"

// ErrCacheConfig wraps every cache-directory configuration failure so
// callers can distinguish operator misconfiguration from other errors.
var ErrCacheConfig = errors.New("cache configuration")

// CacheDir reads and validates the cache directory from the environment.
func CacheDir() (string, error) {
	dir := os.Getenv(EnvCacheDir)
	if dir == "" {
		return "", fmt.Errorf("%w: %s must be set to a shared directory for caching model weights", ErrCacheConfig, EnvCacheDir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s directory does not exist: %s", ErrCacheConfig, EnvCacheDir, dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory: %s", ErrCacheConfig, EnvCacheDir, dir)
	}
	return dir, nil
}
