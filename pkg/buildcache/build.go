// pkg/buildcache/build.go
package buildcache

import (
	"context"
	"fmt"

	"github.com/svishnu88/jlserve/pkg/lifecycle"
	"github.com/svishnu88/jlserve/pkg/registry"
	"go.uber.org/zap"
)

// Build runs the deployment-pipeline workflow: validate the app, install
// its declared requirements, construct an instance, download weights into
// the cache, and persist the completion marker. It happens entirely
// outside the request-serving lifecycle; Setup is never called here.
func Build(ctx context.Context, reg *registry.Registry, inst Installer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	cacheDir, err := CacheDir()
	if err != nil {
		return err
	}
	log.Info("cache directory", zap.String("dir", cacheDir))

	mgr := lifecycle.NewManager(reg, log)
	if err := mgr.Validate(); err != nil {
		return err
	}

	app, err := reg.App()
	if err != nil {
		return err
	}
	if inst == nil {
		inst = NopInstaller{}
	}
	if err := inst.Install(ctx, app.Requirements, cacheDir); err != nil {
		return err
	}

	if err := mgr.Construct(); err != nil {
		return err
	}
	hook, ok := mgr.Instance().(registry.WeightsHook)
	if !ok {
		// Validation guarantees the hook; reaching here means the registry
		// was mutated after validation.
		return fmt.Errorf("app %s does not implement DownloadWeights", app.Name)
	}
	log.Info("downloading weights", zap.String("app", app.Name))
	if err := hook.DownloadWeights(); err != nil {
		return fmt.Errorf("download weights: %w", err)
	}

	if err := WriteMarker(cacheDir); err != nil {
		return err
	}
	log.Info("build complete", zap.String("app", app.Name))
	return nil
}
