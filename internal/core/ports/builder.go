package ports

import (
	"context"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

// BuilderService defines operations for building container images from source code.
type BuilderService interface {
	// BuildDir packages a local build context directory into an image tagged
	// imageName. The pipeline is strictly linear; the first failing step
	// aborts the build and no image is produced.
	BuildDir(ctx context.Context, contextDir string, imageName string, spec domain.BuildSpec) (domain.Image, error)

	// BuildRepo clones a repository and builds an image from its working
	// tree, using the same pipeline as BuildDir.
	BuildRepo(ctx context.Context, repoURL string, imageName string, spec domain.BuildSpec) (domain.Image, error)
}
