// pkg/buildcache/installer.go
package buildcache

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// Installer installs a declared requirement list into the environment,
// using cacheDir for any package cache it keeps.
type Installer interface {
	Install(ctx context.Context, requirements []string, cacheDir string) error
}

// ExecInstaller shells out to an installer binary, e.g. "uv" with args
// "pip install". The cache directory is exported as UV_CACHE_DIR so
// repeated builds reuse downloaded packages.
type ExecInstaller struct {
	Command string
	Args    []string
	Log     *zap.Logger
}

func (e ExecInstaller) Install(ctx context.Context, requirements []string, cacheDir string) error {
	if len(requirements) == 0 {
		return nil
	}
	if e.Log != nil {
		e.Log.Info("installing requirements", zap.Strings("requirements", requirements))
	}
	args := append(append([]string(nil), e.Args...), requirements...)
	cmd := exec.CommandContext(ctx, e.Command, args...)
	cmd.Env = append(os.Environ(), "UV_CACHE_DIR="+cacheDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install requirements: %w", err)
	}
	return nil
}

// NopInstaller records nothing and installs nothing. Useful for apps whose
// requirements are baked into the image, and for tests.
type NopInstaller struct{}

func (NopInstaller) Install(context.Context, []string, string) error { return nil }
