package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newPlanCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{DryRun: true}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the actions apply would take, without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.CredentialsPath = root.credentials
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateApplyOptions(opts); err != nil {
				return err
			}

			return applyCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the state file")
	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "Credential profile overriding the state file's default")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
