// Package main provides the CLI entry point for cdtire.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/cdtire-go/internal/backend"
	"github.com/ukaji3/cdtire-go/internal/config"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
)

// app carries state shared by the subcommands.
type app struct {
	envFile  string
	logLevel string
	dsn      string
	cfg      *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "cdtire",
		Short: "Fill CDTire protocol templates and extract test-run matrices",
		Long: `cdtire fills CDTire protocol templates with operator values, extracts
test-run matrices from protocol workbooks and submits them to the
simulation backend.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $CDTIRE_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&a.dsn, "dsn", "", "PostgreSQL DSN for the run store (default: $CDTIRE_DATABASE_URL)")

	rootCmd.AddCommand(
		newExtractCmd(a),
		newFillCmd(a),
		newSubmitCmd(a),
		newSummaryCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = logging.ParseLevel(a.logLevel)
	}
	logging.SetLogger(logging.NewLevelLogger(cmd.ErrOrStderr(), level))

	if a.dsn == "" {
		a.dsn = cfg.DatabaseURL
	}
	return nil
}

func (a *app) client() *backend.Client {
	return backend.NewClient(a.cfg.API.BaseURL,
		backend.WithTimeout(a.cfg.API.Timeout),
		backend.WithTokenStore(backend.FileTokenStore{Path: a.cfg.API.TokenFile}))
}
