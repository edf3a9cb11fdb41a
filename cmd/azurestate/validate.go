package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eitrtech/azurestate/internal/config"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate a state file without touching Azure",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateApplyOptions(applyOptions{ConfigPath: configPath}); err != nil {
				return err
			}

			cfg, err := config.ParseConfig(configPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d resource(s)\n", configPath, len(cfg.Resources))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the state file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
