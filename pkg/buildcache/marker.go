// pkg/buildcache/marker.go
package buildcache

import (
	"fmt"
	"os"
	"path/filepath"
)

// markerName is the persisted evidence that a build completed: weights
// downloaded, dependencies installed. Serving refuses to start without it.
const markerName = ".jlserve-build-complete"

func MarkerPath(cacheDir string) string {
	return filepath.Join(cacheDir, markerName)
}

// WriteMarker records a successful build in the cache directory.
func WriteMarker(cacheDir string) error {
	f, err := os.OpenFile(MarkerPath(cacheDir), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("write build marker: %w", err)
	}
	return f.Close()
}

// HasMarker reports whether a completed build is recorded.
func HasMarker(cacheDir string) bool {
	_, err := os.Stat(MarkerPath(cacheDir))
	return err == nil
}

// RequireMarker fails when no completed build is recorded, pointing the
// operator at the build step.
func RequireMarker(cacheDir string) error {
	if HasMarker(cacheDir) {
		return nil
	}
	return fmt.Errorf("build marker not found in %s; run the build step first", cacheDir)
}
