package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/docker"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/ports"
)

func upCmd() *cobra.Command {
	var (
		flags   specFlags
		name    string
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "up <context-dir | repo-url>",
		Short: "Build an image and start a container from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(flags.verifyBase)
			if err != nil {
				return err
			}
			spec := flags.spec()
			img, err := buildSource(cmd, b, args[0], flags.image, spec)
			if err != nil {
				return err
			}

			svc, err := docker.NewAdapter(cfg.StopTimeout)
			if err != nil {
				return err
			}
			ctr, err := svc.StartContainer(cmd.Context(), img.Name, ports.RunOptions{
				Name:        name,
				Port:        img.Port,
				PublishPort: publish,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "started %s from %s\n", ctr.ID, img.Name)
			if ctr.HostPort != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "listening on host port %s (container port %d)\n", ctr.HostPort, img.Port)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Container name")
	cmd.Flags().BoolVar(&publish, "publish", true, "Publish the advisory port to an ephemeral host port")
	return cmd
}
