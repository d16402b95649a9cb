// Package registry resolves base runtime references against their container
// registry. It covers the "unresolvable base image" failure class before a
// build is handed to the daemon, and can pin a floating version constraint
// to the highest published tag of a variant.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mvc "github.com/Masterminds/semver/v3"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

type Resolver struct {
	// auth relies on the standard docker config (~/.docker/config.json)
	keychain authn.Keychain
}

func NewResolver() *Resolver {
	return &Resolver{
		keychain: authn.DefaultKeychain,
	}
}

// Verify checks that the reference exists and is fetchable. It issues a HEAD
// request only; nothing is pulled.
func (r *Resolver) Verify(ctx context.Context, ref string) error {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return fmt.Errorf("invalid base image reference %q: %w", ref, err)
	}
	if _, err := remote.Head(parsed, remote.WithAuthFromKeychain(r.keychain), remote.WithContext(ctx)); err != nil {
		return fmt.Errorf("base image %s unresolvable: %w", ref, err)
	}
	return nil
}

// Resolve returns the highest tag of repo that satisfies the semver
// constraint and carries the variant suffix.
// repo: "python", constraint: "3.11.x", variant: "slim"
// Returns: "python:3.11.9-slim" (if 3.11.9 is the highest published patch).
func (r *Resolver) Resolve(ctx context.Context, repo, constraint, variant string) (string, error) {
	c, err := parseConstraint(constraint)
	if err != nil {
		return "", err
	}
	repository, err := parseRepo(repo)
	if err != nil {
		return "", err
	}

	tags, err := remote.List(repository, remote.WithAuthFromKeychain(r.keychain), remote.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to list tags for %s: %w", repository.Name(), err)
	}

	tag, err := selectHighestTag(tags, c, variant)
	if err != nil {
		return "", fmt.Errorf("%w for %s", err, repository.Name())
	}
	return fmt.Sprintf("%s:%s", repository.Name(), tag), nil
}

func parseConstraint(policy string) (*mvc.Constraints, error) {
	c, err := mvc.NewConstraint(policy)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", policy, err)
	}
	return c, nil
}

func parseRepo(repo string) (name.Repository, error) {
	// Accept either a bare repository or a full reference; the tag part is
	// ignored when present.
	if ref, err := name.ParseReference(repo); err == nil {
		return ref.Context(), nil
	}
	r, err := name.NewRepository(repo)
	if err != nil {
		return name.Repository{}, fmt.Errorf("invalid repository %q: %w", repo, err)
	}
	return r, nil
}

// selectHighestTag picks the highest semver tag matching the constraint. When
// variant is non-empty only tags with the "-<variant>" suffix are considered
// and the returned tag keeps the suffix. Non-semver tags are skipped.
func selectHighestTag(tags []string, c *mvc.Constraints, variant string) (string, error) {
	suffix := ""
	if variant != "" {
		suffix = "-" + variant
	}

	var versions []*mvc.Version
	originalTags := make(map[string]string)
	for _, t := range tags {
		base := t
		if suffix != "" {
			if !strings.HasSuffix(t, suffix) {
				continue
			}
			base = strings.TrimSuffix(t, suffix)
		} else if strings.Contains(t, "-") {
			// without a variant, suffixed tags belong to other variants
			continue
		}
		v, err := mvc.NewVersion(base)
		if err != nil {
			continue // skip non-semver tags (e.g. "latest", "slim")
		}
		if c.Check(v) {
			versions = append(versions, v)
			originalTags[v.Original()] = t
		}
	}

	if len(versions) == 0 {
		return "", fmt.Errorf("no tags found matching constraint")
	}

	sort.Sort(mvc.Collection(versions))
	highest := versions[len(versions)-1]
	tag := originalTags[highest.Original()]
	if tag == "" {
		tag = highest.Original() + suffix
	}
	return tag, nil
}
