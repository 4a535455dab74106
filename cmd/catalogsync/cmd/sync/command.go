// Package sync implements the sync command: it loads the local and
// canonical collection files, runs a reconciliation pass, and writes the
// reconciled collections, the run report, and the run history entry.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dialoggauge/catalogsync"
	"github.com/dialoggauge/catalogsync/internal/store"
	"github.com/dialoggauge/catalogsync/pkg/catalogs"
	"github.com/dialoggauge/catalogsync/pkg/errors"
	"github.com/dialoggauge/catalogsync/pkg/ledger"
)

// AppContext defines what the sync command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
}

// Options carries the sync command's settings. Values given here act as
// flag defaults, so config-file and env settings flow through.
type Options struct {
	LocalDir     string
	CanonicalDir string
	OutputDir    string
	ReportPath   string
	HistoryPath  string
	Concurrent   bool
	SortByID     bool
	Renumber     bool
	DryRun       bool
	NoHistory    bool
}

// reconcilable lists the entity types matched against the canonical
// catalog, in reconciliation order.
var reconcilable = []catalogs.Type{
	catalogs.Categories,
	catalogs.Practitioners,
	catalogs.Resources,
	catalogs.Services,
	catalogs.Offers,
}

// linkTypes are local-only collections that carry references into the
// reconciled types. They are rewritten, never matched.
var linkTypes = []catalogs.Type{
	"service_practitioners",
	"service_resources",
	"offer_services",
	"resource_instances",
}

// NewCommand creates the sync command with app dependencies.
func NewCommand(app AppContext, defaults Options) *cobra.Command {
	opts := defaults

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local collections against the canonical catalog",
		Long: `Sync loads each collection file present in both the local and the
canonical directory, reconciles it (matching by normalized name,
reassigning conflicting identifiers, merging canonical fields while
keeping protected local overrides), rewrites references in the local-only
link collections, and writes the results.

Collection files are named <type>.json, <type>.yaml, or <type>.yml.`,
		Example: `  catalogsync sync --local ./catalog --canonical ./upstream
  catalogsync sync --local ./catalog --canonical ./upstream --out ./merged --report report.json
  catalogsync sync --local ./catalog --canonical ./upstream --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), app, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LocalDir, "local", opts.LocalDir, "directory with local collection files")
	cmd.Flags().StringVar(&opts.CanonicalDir, "canonical", opts.CanonicalDir, "directory with canonical collection files")
	cmd.Flags().StringVar(&opts.OutputDir, "out", opts.OutputDir, "output directory (defaults to the local directory)")
	cmd.Flags().StringVar(&opts.ReportPath, "report", opts.ReportPath, "write the run report as JSON to this file")
	cmd.Flags().BoolVar(&opts.Concurrent, "concurrent", opts.Concurrent, "reconcile independent collections in parallel")
	cmd.Flags().BoolVar(&opts.SortByID, "sort-by-id", opts.SortByID, "sort each reconciled collection by final identifier")
	cmd.Flags().BoolVar(&opts.Renumber, "renumber", opts.Renumber, "renumber the sort_order field after reconciling")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", opts.DryRun, "reconcile and report without writing any files")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", opts.NoHistory, "skip recording the run in the history database")

	return cmd
}

func run(ctx context.Context, app AppContext, opts Options, cmd *cobra.Command) error {
	if opts.LocalDir == "" {
		return &errors.ValidationError{Field: "local", Message: "directory is required"}
	}
	if opts.CanonicalDir == "" {
		return &errors.ValidationError{Field: "canonical", Message: "directory is required"}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = opts.LocalDir
	}

	logger := app.Logger()

	job, paths, err := buildJob(opts.LocalDir, opts.CanonicalDir)
	if err != nil {
		return err
	}
	if len(job.Collections) == 0 {
		return &errors.ValidationError{
			Field:   "local",
			Message: "no collection present in both directories",
		}
	}

	engine, err := catalogsync.New(
		catalogsync.WithLogger(logger),
		catalogsync.WithConcurrency(opts.Concurrent),
		catalogsync.WithSortByID(opts.SortByID),
		catalogsync.WithSortOrderRenumber(opts.Renumber),
	)
	if err != nil {
		return err
	}

	result, err := engine.Sync(ctx, job)
	if err != nil {
		return err
	}

	if !opts.DryRun {
		if err := writeResults(job, result, paths, opts.OutputDir); err != nil {
			return err
		}
		if opts.ReportPath != "" {
			if err := writeReport(result.Report, opts.ReportPath); err != nil {
				return err
			}
		}
	}

	if !opts.NoHistory && opts.HistoryPath != "" {
		if err := recordRun(ctx, opts.HistoryPath, result.Report); err != nil {
			// History is bookkeeping, never the reason a sync fails.
			logger.Warn().Err(err).Msg("Failed to record run history")
		}
	}

	printSummary(cmd, result, opts.DryRun)

	if result.Report.Status == ledger.StatusFailed {
		return fmt.Errorf("reconciliation failed: every collection step failed")
	}
	return nil
}

// buildJob discovers collection files. Types present in both directories
// are reconciled; link types present only locally are rewritten.
func buildJob(localDir, canonicalDir string) (*catalogsync.Job, map[catalogs.Type]string, error) {
	job := &catalogsync.Job{}
	paths := make(map[catalogs.Type]string)

	for _, t := range reconcilable {
		localPath := findCollectionFile(localDir, t)
		if localPath == "" {
			continue
		}
		canonicalPath := findCollectionFile(canonicalDir, t)
		if canonicalPath == "" {
			continue
		}

		local, err := catalogs.LoadFile(t, localPath)
		if err != nil {
			return nil, nil, err
		}
		canonical, err := catalogs.LoadFile(t, canonicalPath)
		if err != nil {
			return nil, nil, err
		}

		job.Collections = append(job.Collections, catalogsync.Entry{
			Local:     local,
			Canonical: canonical,
		})
		paths[t] = localPath
	}

	for _, t := range linkTypes {
		localPath := findCollectionFile(localDir, t)
		if localPath == "" {
			continue
		}
		dep, err := catalogs.LoadFile(t, localPath)
		if err != nil {
			return nil, nil, err
		}
		job.Dependents = append(job.Dependents, dep)
		paths[t] = localPath
	}

	return job, paths, nil
}

// findCollectionFile returns the first existing <type>.{json,yaml,yml}
// file in dir, or "" when none exists.
func findCollectionFile(dir string, t catalogs.Type) string {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, t.String()+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// writeResults writes every reconciled collection and every rewritten
// dependent to outDir, keeping each file's original name and format.
func writeResults(job *catalogsync.Job, result *catalogsync.Result, paths map[catalogs.Type]string, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.WrapStore("create output directory", err)
	}

	for t, res := range result.Collections {
		out := filepath.Join(outDir, filepath.Base(paths[t]))
		if err := res.Collection.SaveFile(out); err != nil {
			return err
		}
	}
	for _, dep := range job.Dependents {
		out := filepath.Join(outDir, filepath.Base(paths[dep.Type]))
		if err := dep.SaveFile(out); err != nil {
			return err
		}
	}
	return nil
}

// writeReport writes the run report as indented JSON.
func writeReport(report *ledger.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.WrapStore("encode report", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.WrapStore("write report", err)
	}
	return nil
}

// recordRun saves the report in the run history database.
func recordRun(ctx context.Context, historyPath string, report *ledger.Report) error {
	s, err := store.Open(historyPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveReport(ctx, report, "cli")
}

// printSummary writes a short human-readable summary to stdout.
func printSummary(cmd *cobra.Command, result *catalogsync.Result, dryRun bool) {
	out := cmd.OutOrStdout()
	report := result.Report

	header := "Sync"
	if dryRun {
		header = "Sync (dry run)"
	}
	fmt.Fprintf(out, "%s %s: %s\n", header, report.RunID, report.Status)

	for _, name := range report.TypeOrder {
		outcome := report.PerType[name]
		if outcome.Failed {
			fmt.Fprintf(out, "  %-22s failed: %s\n", name, outcome.FailureReason)
			continue
		}
		fmt.Fprintf(out, "  %-22s %d created, %d updated, %d archived, %d errors\n",
			name, outcome.Created, outcome.Updated, outcome.Archived, len(outcome.Errors))
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", warning)
	}

	fmt.Fprintf(out, "Total: %d created, %d updated, %d archived, %d errors (%s)\n",
		report.TotalCreated, report.TotalUpdated, report.TotalArchived,
		report.TotalErrors, report.Duration.Round(time.Millisecond))
}
