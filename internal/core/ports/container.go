package ports

import (
	"context"
	"io"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

// RunOptions controls how a container is started from a built image.
type RunOptions struct {
	// Name is the desired container name; sanitized before use.
	Name string
	// Port is the advisory container port. When PublishPort is set it is
	// bound to an ephemeral host port; otherwise it stays metadata only.
	Port        int
	PublishPort bool
}

// ContainerService defines the core operations for managing containers.
// This interface allows us to switch between Docker, Podman, or Kubernetes
// without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	StartContainer(ctx context.Context, image string, opts RunOptions) (domain.Container, error)
	StopContainer(ctx context.Context, id string) error
	GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)
}
