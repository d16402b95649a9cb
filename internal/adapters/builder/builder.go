// Package builder turns a build context into a runnable image. The pipeline
// is strictly linear: resolve base image, validate the context, synthesize
// the Dockerfile, tar the context, run the daemon build. The first failing
// step aborts the attempt and no image is tagged.
package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-git/go-git/v5"

	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/dockerfile"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/ports"
	"github.com/SlickbitTechnologies/doclens-forge/internal/logging"
	"github.com/SlickbitTechnologies/doclens-forge/internal/metrics"
)

// dockerBuildAPI is the slice of the Docker SDK the builder needs. Tests
// substitute a fake.
type dockerBuildAPI interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
}

// Options configures optional collaborators of the builder.
type Options struct {
	// Registry, when set together with VerifyBase, checks the base image
	// reference before the daemon build starts.
	Registry   ports.RegistryService
	VerifyBase bool
	// VerifyTimeout bounds the registry check; 0 leaves the build's own
	// context deadline in charge.
	VerifyTimeout time.Duration
	// Store receives a BuildRecord for every attempt, failed ones included.
	Store ports.BuildStore
}

type Adapter struct {
	cli  dockerBuildAPI
	opts Options
}

func NewBuilderAdapter(opts Options) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, opts: opts}, nil
}

// BuildDir packages a local context directory into an image tagged imageName.
func (a *Adapter) BuildDir(ctx context.Context, contextDir string, imageName string, spec domain.BuildSpec) (domain.Image, error) {
	return a.build(ctx, contextDir, contextDir, imageName, spec)
}

// BuildRepo clones a repository and builds an image from its working tree.
func (a *Adapter) BuildRepo(ctx context.Context, repoURL string, imageName string, spec domain.BuildSpec) (domain.Image, error) {
	tmpDir, err := os.MkdirTemp("", "forge-build-*")
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	logging.Get().Info().Str("repo", repoURL).Str("dir", tmpDir).Msg("cloning repository")
	_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:   repoURL,
		Depth: 1, // shallow clone for speed
	})
	if err != nil {
		a.finish(start(imageName, repoURL, spec), stepClone, err)
		return domain.Image{}, fmt.Errorf("%s: %w", stepClone, err)
	}

	return a.build(ctx, tmpDir, repoURL, imageName, spec)
}

// Pipeline step names, reported on failure and recorded in the history.
const (
	stepClone   = "clone repository"
	stepSpec    = "render dockerfile"
	stepVerify  = "verify base image"
	stepContext = "validate context"
	stepDaemon  = "build image"
)

func (a *Adapter) build(ctx context.Context, dir, source, imageName string, spec domain.BuildSpec) (domain.Image, error) {
	rec := start(imageName, source, spec)

	content, err := dockerfile.Render(spec)
	if err != nil {
		a.finish(rec, stepSpec, err)
		return domain.Image{}, fmt.Errorf("%s: %w", stepSpec, err)
	}

	if a.opts.VerifyBase && a.opts.Registry != nil {
		if err := a.verifyBase(ctx, spec.BaseImage); err != nil {
			a.finish(rec, stepVerify, err)
			return domain.Image{}, fmt.Errorf("%s: %w", stepVerify, err)
		}
	}

	if err := dockerfile.ValidateContext(dir, spec); err != nil {
		a.finish(rec, stepContext, err)
		return domain.Image{}, fmt.Errorf("%s: %w", stepContext, err)
	}

	cleanup, err := ensureDockerfile(dir, content)
	if err != nil {
		a.finish(rec, stepContext, err)
		return domain.Image{}, fmt.Errorf("%s: %w", stepContext, err)
	}
	defer cleanup()

	// The tar carries the whole context, unfiltered.
	tar, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		a.finish(rec, stepContext, err)
		return domain.Image{}, fmt.Errorf("%s: failed to create build context: %w", stepContext, err)
	}

	logging.Get().Info().Str("image", imageName).Str("base", spec.BaseImage).Msg("building image")
	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{imageName},
		Dockerfile: dockerfile.FileName,
		Remove:     true, // remove intermediate containers
	})
	if err != nil {
		a.finish(rec, stepDaemon, err)
		return domain.Image{}, fmt.Errorf("%s: %w", stepDaemon, err)
	}
	defer resp.Body.Close()

	// The daemon reports failures (base pull, pip resolution) inside the
	// message stream, not via the call's error return.
	if err := drainBuildStream(resp.Body); err != nil {
		a.finish(rec, stepDaemon, err)
		return domain.Image{}, fmt.Errorf("%s: %w", stepDaemon, err)
	}

	a.finish(rec, "", nil)
	return domain.Image{
		Name:      imageName,
		BaseImage: spec.BaseImage,
		Port:      spec.Port,
		BuiltAt:   time.Now(),
	}, nil
}

// verifyBase runs the registry check under the configured timeout so a
// stalled registry cannot hold the whole build.
func (a *Adapter) verifyBase(ctx context.Context, baseImage string) error {
	if a.opts.VerifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.VerifyTimeout)
		defer cancel()
	}
	return a.opts.Registry.Verify(ctx, baseImage)
}

// drainBuildStream consumes the daemon's jsonmessage stream until EOF and
// returns the embedded error, if any.
func drainBuildStream(r io.Reader) error {
	if err := jsonmessage.DisplayJSONMessagesStream(r, io.Discard, 0, false, nil); err != nil {
		if jerr, ok := err.(*jsonmessage.JSONError); ok {
			return fmt.Errorf("daemon build failed: %s", jerr.Message)
		}
		return fmt.Errorf("daemon build failed: %w", err)
	}
	return nil
}

// ensureDockerfile writes the synthesized Dockerfile into the context unless
// the context already ships one. The returned cleanup removes the file only
// when this call created it.
func ensureDockerfile(dir string, content []byte) (func(), error) {
	p := filepath.Join(dir, dockerfile.FileName)
	if _, err := os.Stat(p); err == nil {
		return func() {}, nil
	}
	if err := os.WriteFile(p, content, 0o644); err != nil {
		return nil, fmt.Errorf("write dockerfile: %w", err)
	}
	return func() { _ = os.Remove(p) }, nil
}

func start(imageName, source string, spec domain.BuildSpec) domain.BuildRecord {
	return domain.BuildRecord{
		Image:     imageName,
		BaseImage: spec.BaseImage,
		Source:    source,
		StartedAt: time.Now(),
	}
}

// finish closes out one attempt: metrics, history, log line.
func (a *Adapter) finish(rec domain.BuildRecord, step string, err error) {
	rec.Duration = time.Since(rec.StartedAt)
	rec.Success = err == nil
	if err != nil {
		rec.FailedStep = step
		rec.Error = err.Error()
		logging.Get().Error().Str("image", rec.Image).Str("step", step).Err(err).Msg("build failed")
	} else {
		logging.Get().Info().Str("image", rec.Image).Dur("duration", rec.Duration).Msg("build succeeded")
	}
	metrics.RecordBuild(rec.Success, rec.Duration)
	if a.opts.Store != nil {
		if serr := a.opts.Store.Append(rec); serr != nil {
			logging.Get().Warn().Err(serr).Msg("failed to persist build record")
		}
	}
}
