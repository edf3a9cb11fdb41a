package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/engine"
	"github.com/eitrtech/azurestate/internal/logger"
	"github.com/eitrtech/azurestate/internal/report"
)

type applyOptions struct {
	ConfigPath      string
	CredentialsPath string
	Profile         string
	DryRun          bool
	Verbose         bool
	NonInteractive  bool
}

var applyCmdRunner = runApply

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile the resources in a state file",
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

func runApply(opts applyOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	effectiveDryRun := opts.DryRun || cfg.Settings.DryRun
	effectiveVerbose := opts.Verbose || cfg.Settings.Verbose

	level := "info"
	if effectiveVerbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: !opts.NonInteractive})
	if err != nil {
		return err
	}

	credPath, err := credentialsPath(opts.CredentialsPath)
	if err != nil {
		return err
	}
	store, err := acct.NewStore(credPath)
	if err != nil {
		return err
	}

	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}

	reconciler := engine.New(store, engine.Options{
		MaxRetries: cfg.Settings.MaxRetries,
		Timeout:    time.Duration(cfg.Settings.Timeout) * time.Second,
		DryRun:     effectiveDryRun,
	}, log)

	runner := engine.NewRunner(reconciler, cfg.Settings.Parallel, log)
	runReport := runner.Run(ctx, cfg)

	renderer := report.NewRenderer(!opts.NonInteractive)
	fmt.Fprintln(os.Stdout, renderer.Render(runReport))

	if n := runReport.Failed(); n > 0 {
		return fmt.Errorf("%d of %d resources failed to reconcile", n, len(runReport.Results))
	}

	return nil
}

// credentialsPath resolves the profile file location, defaulting to
// ~/.azurestate/credentials.yaml.
func credentialsPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return home + "/.azurestate/credentials.yaml", nil
}
