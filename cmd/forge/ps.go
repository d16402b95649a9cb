package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/docker"
	"github.com/SlickbitTechnologies/doclens-forge/internal/state"
)

func psCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ps",
		Short: "List running containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := docker.NewAdapter(cfg.StopTimeout)
			if err != nil {
				return err
			}
			containers, err := svc.ListContainers(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tIMAGE\tSTATE\tIP\tHOST PORT")
			for _, c := range containers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Image, c.State, c.IPAddress, c.HostPort)
			}
			return w.Flush()
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the build history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := state.NewStore(cfg.StateDir).List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tIMAGE\tBASE\tRESULT\tDURATION")
			for _, r := range records {
				result := "ok"
				if !r.Success {
					result = "failed: " + r.FailedStep
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.Image, r.BaseImage, result, r.Duration.Round(10*time.Millisecond))
			}
			return w.Flush()
		},
	}
}
