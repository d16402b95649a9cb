package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/builder"
	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/docker"
	httpadapter "github.com/SlickbitTechnologies/doclens-forge/internal/adapters/http"
	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/registry"
	"github.com/SlickbitTechnologies/doclens-forge/internal/logging"
	"github.com/SlickbitTechnologies/doclens-forge/internal/metrics"
	"github.com/SlickbitTechnologies/doclens-forge/internal/state"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the build-and-deploy API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := state.NewStore(cfg.StateDir)

			dockerAdapter, err := docker.NewAdapter(cfg.StopTimeout)
			if err != nil {
				return err
			}
			builderAdapter, err := builder.NewBuilderAdapter(builder.Options{
				Registry:      registry.NewResolver(),
				VerifyBase:    cfg.VerifyBaseImage,
				VerifyTimeout: cfg.VerifyTimeout,
				Store:         store,
			})
			if err != nil {
				return err
			}

			handler := httpadapter.NewHandler(dockerAdapter, builderAdapter, store, cfg.BuildSpec())
			proxy := httpadapter.NewProxyHandler(dockerAdapter, cfg.Port, cfg.ProxyDomain)
			app := httpadapter.NewRouter(handler, proxy)

			if cfg.MetricsEnabled {
				go func() {
					logging.Get().Info().Int("port", cfg.MetricsPort).Msg("metrics listener starting")
					if err := metrics.Serve(cfg.MetricsPort); err != nil {
						logging.Get().Error().Err(err).Msg("metrics listener failed")
					}
				}()
			}

			// graceful shutdown on SIGINT/SIGTERM
			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-done
				logging.Get().Info().Msg("shutting down")
				_ = app.Shutdown()
			}()

			logging.Get().Info().Str("addr", cfg.ListenAddr).Msg("server starting")
			return app.Listen(cfg.ListenAddr)
		},
	}
}
