package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SlickbitTechnologies/doclens-forge/internal/adapters/registry"
)

func resolveBaseCmd() *cobra.Command {
	var (
		repo    string
		variant string
	)
	cmd := &cobra.Command{
		Use:   "resolve-base <constraint>",
		Short: "Pin a base image version constraint to the highest published tag",
		Long: `Resolve a floating version constraint against the registry, e.g.

  forge resolve-base 3.11.x --repo python --variant slim

prints the exact tag to pin in the build spec.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := registry.NewResolver().Resolve(cmd.Context(), repo, args[0], variant)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref)
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "python", "Image repository to resolve against")
	cmd.Flags().StringVar(&variant, "variant", "slim", "Tag variant suffix")
	return cmd
}
