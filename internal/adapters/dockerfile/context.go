package dockerfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

// ValidateContext enforces the build input contract before any daemon round
// trip: the entry point and the dependency manifest must exist and be
// readable at the context root. The copy step itself is unfiltered, so
// nothing else in the directory is inspected.
func ValidateContext(dir string, spec domain.BuildSpec) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("build context: %s is not a directory", dir)
	}
	for _, name := range []string{spec.Entrypoint, spec.Manifest} {
		p := filepath.Join(dir, name)
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("build context: required file %s: %w", name, err)
		}
		_ = f.Close()
	}
	return nil
}
