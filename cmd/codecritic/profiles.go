package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/codecritic/internal/config"
	"github.com/dshills/codecritic/internal/profile"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in language profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := profile.List()
			if err != nil {
				return fmt.Errorf("failed to load profiles: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				p, err := profile.Lookup(name)
				if err != nil {
					return fmt.Errorf("failed to load profile %s: %w", name, err)
				}
				fmt.Fprintf(out, "%-12s %-12s %s\n", p.Language, strings.Join(p.Extensions, ","), p.Name)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, nil)
			if err != nil {
				return exitError(exitInput, "invalid configuration: %v", err)
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Configuration file (default: ./"+config.FileName+" when present)")
	return cmd
}
