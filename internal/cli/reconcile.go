package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/anonto42/blogspace/backend/internal/models"
	"github.com/spf13/cobra"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Blog string // slug; empty reconciles everything
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute engagement counters from source collections",
		Long: `Recount likes, comments and top-level comments for blogs, and the
published post count for every author, then rewrite drifted counters.

Examples:
  blogctl reconcile
  blogctl reconcile --blog my-post-3f2a9c1d0b7e
  blogctl reconcile --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Blog, "blog", "", "reconcile a single blog by slug")
	return cmd
}

type reconcileResult struct {
	Run   *models.ReconcileRun `json:"run"`
	Drift *models.BlogDrift    `json:"drift,omitempty"`
	Error string               `json:"error,omitempty"`
}

func runReconcile(opts *ReconcileOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	r, closeFn, err := opts.Open(ctx, opts.RootOptions)
	if err != nil {
		return fmt.Errorf("opening stores: %w", err)
	}
	defer closeFn()

	var result reconcileResult
	var runErr error
	if opts.Blog != "" {
		run, drift, err := r.ReconcileSlug(ctx, opts.Blog)
		if run == nil {
			return err
		}
		result.Run, result.Drift, runErr = run, &drift, err
	} else {
		result.Run, runErr = r.ReconcileAll(ctx)
		if result.Run == nil {
			return runErr
		}
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	if err := writeReconcile(cmd.OutOrStdout(), opts.Format, result); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("reconciliation finished with %d error(s)", result.Run.Errors)
	}
	return nil
}

func writeReconcile(w io.Writer, format string, res reconcileResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	run := res.Run
	fmt.Fprintf(w, "scope: %s (%dms)\n", run.Scope, run.DurationMilli)
	fmt.Fprintf(w, "blogs: %d scanned, %d drifted\n", run.BlogsScanned, run.BlogsDrifted)
	if run.UsersScanned > 0 {
		fmt.Fprintf(w, "users: %d scanned, %d drifted\n", run.UsersScanned, run.UsersDrifted)
	}
	if d := res.Drift; d != nil && d.Drifted() {
		fmt.Fprintf(w, "likes: %d -> %d\n", d.Before.TotalLikes, d.After.TotalLikes)
		fmt.Fprintf(w, "comments: %d -> %d\n", d.Before.TotalComments, d.After.TotalComments)
		fmt.Fprintf(w, "parent comments: %d -> %d\n", d.Before.TotalParentComments, d.After.TotalParentComments)
	}
	if res.Error != "" {
		fmt.Fprintf(w, "errors: %s\n", res.Error)
	}
	return nil
}

// HistoryOptions holds flags for the reconcile-history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the reconcile-history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile-history",
		Short: "Show recorded reconciliation runs",
		Long:  "List the latest reconciliation runs from the PostgreSQL audit store, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "number of runs to show")
	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	r, closeFn, err := opts.Open(ctx, opts.RootOptions)
	if err != nil {
		return fmt.Errorf("opening stores: %w", err)
	}
	defer closeFn()

	runs, err := r.History(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []models.ReconcileRun{}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no recorded runs (is POSTGRES_CONN_STR set?)")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSCOPE\tBLOGS\tDRIFTED\tUSERS\tDRIFTED\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Scope,
			run.BlogsScanned, run.BlogsDrifted, run.UsersScanned, run.UsersDrifted, run.Errors)
	}
	return tw.Flush()
}
