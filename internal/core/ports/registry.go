package ports

import (
	"context"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

// RegistryService resolves base runtime references against their registry.
type RegistryService interface {
	// Verify checks that the reference can be fetched. A failure here is the
	// "unresolvable base image" class of build failure, surfaced before the
	// daemon build starts.
	Verify(ctx context.Context, ref string) error

	// Resolve picks the highest tag of repo matching a semver constraint and
	// variant suffix, e.g. ("python", "3.11.x", "slim") -> "python:3.11.9-slim".
	Resolve(ctx context.Context, repo, constraint, variant string) (string, error)
}

// BuildStore persists the build history.
type BuildStore interface {
	Append(r domain.BuildRecord) error
	List() ([]domain.BuildRecord, error)
}
