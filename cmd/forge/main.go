package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SlickbitTechnologies/doclens-forge/internal/config"
	"github.com/SlickbitTechnologies/doclens-forge/internal/logging"
)

var (
	cfg     = config.DefaultConfig()
	cfgFile string
	debug   bool
)

func main() {
	root := &cobra.Command{
		Use:           "forge",
		Short:         "Package and run Python web applications as container images",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				c, err := config.LoadConfigFromFile(cfgFile)
				if err != nil {
					return fmt.Errorf("failed loading config: %w", err)
				}
				cfg = c
			}
			if err := config.ApplyEnvOverrides(cfg); err != nil {
				return fmt.Errorf("invalid environment configuration: %w", err)
			}

			level := cfg.LogLevel
			if debug {
				level = "debug"
			}
			console := cmd.Name() != "serve"
			logging.Init(level, console)

			for _, w := range cfg.Validate() {
				logging.Get().Warn().Msg(w)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(buildCmd())
	root.AddCommand(upCmd())
	root.AddCommand(psCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(resolveBaseCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
