package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/builder"
	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/registry"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/ports"
	"github.com/SlickbitTechnologies/doclens-forge/internal/state"
)

// specFlags binds the per-invocation packaging overrides.
type specFlags struct {
	image      string
	baseImage  string
	workdir    string
	port       int
	entrypoint string
	manifest   string
	verifyBase bool
}

func (f *specFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.image, "image", "", "Image tag for the build (required)")
	cmd.Flags().StringVar(&f.baseImage, "base", "", "Base runtime image")
	cmd.Flags().StringVar(&f.workdir, "workdir", "", "Working directory inside the image")
	cmd.Flags().IntVar(&f.port, "port", 0, "Advisory port the application listens on")
	cmd.Flags().StringVar(&f.entrypoint, "entrypoint", "", "Entry point file at the context root")
	cmd.Flags().StringVar(&f.manifest, "manifest", "", "Dependency manifest at the context root")
	cmd.Flags().BoolVar(&f.verifyBase, "verify-base", false, "Verify the base image against its registry before building")
	_ = cmd.MarkFlagRequired("image")
}

func (f *specFlags) spec() domain.BuildSpec {
	spec := cfg.BuildSpec()
	if f.baseImage != "" {
		spec.BaseImage = f.baseImage
	}
	if f.workdir != "" {
		spec.WorkDir = f.workdir
	}
	if f.port != 0 {
		spec.Port = f.port
	}
	if f.entrypoint != "" {
		spec.Entrypoint = f.entrypoint
	}
	if f.manifest != "" {
		spec.Manifest = f.manifest
	}
	return spec
}

func newBuilder(verifyBase bool) (ports.BuilderService, error) {
	return builder.NewBuilderAdapter(builder.Options{
		Registry:      registry.NewResolver(),
		VerifyBase:    verifyBase || cfg.VerifyBaseImage,
		VerifyTimeout: cfg.VerifyTimeout,
		Store:         state.NewStore(cfg.StateDir),
	})
}

// buildSource dispatches on the source form: git URLs build from a clone,
// anything else is a local context directory.
func buildSource(cmd *cobra.Command, b ports.BuilderService, source, image string, spec domain.BuildSpec) (domain.Image, error) {
	if isRepoURL(source) {
		return b.BuildRepo(cmd.Context(), source, image, spec)
	}
	return b.BuildDir(cmd.Context(), source, image, spec)
}

func isRepoURL(s string) bool {
	for _, prefix := range []string{"http://", "https://", "git@", "ssh://"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func buildCmd() *cobra.Command {
	var flags specFlags
	cmd := &cobra.Command{
		Use:   "build <context-dir | repo-url>",
		Short: "Build a container image from a build context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(flags.verifyBase)
			if err != nil {
				return err
			}
			img, err := buildSource(cmd, b, args[0], flags.image, flags.spec())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %s (base %s, port %d)\n", img.Name, img.BaseImage, img.Port)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
