// Package cli implements blogctl, the maintenance command line for blogspace.
package cli

import (
	"context"
	"fmt"

	"github.com/anonto42/blogspace/backend/internal/repositories"
	"github.com/anonto42/blogspace/backend/internal/services"
	"github.com/anonto42/blogspace/backend/pkg/config"
	"github.com/anonto42/blogspace/backend/pkg/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the reconciler factory shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Open connects to the stores. The returned func releases them.
	Open func(ctx context.Context, opts *RootOptions) (*services.Reconciler, func(), error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command wired to the configured databases.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Open: openStores})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogctl",
		Short: "blogspace maintenance tool",
		Long:  "Maintenance commands for blogspace: counter reconciliation and its audit history.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStores builds a Reconciler from the environment, the same way the server does
func openStores(ctx context.Context, opts *RootOptions) (*services.Reconciler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Env)

	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	repos := repositories.New(db.Database, db.Postgres, cfg.Mongo.Timeout)
	if err := repos.Prepare(ctx); err != nil {
		db.CloseDB()
		return nil, nil, err
	}

	tx := repositories.NewMongoTransactor(db.Mongo, cfg.Mongo.Transactions)
	r := services.NewReconciler(repos.Blog, repos.Comment, repos.Notification, repos.User, repos.ReconcileRun, tx, log)
	return r, db.CloseDB, nil
}
