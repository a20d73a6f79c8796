package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rezaim0/tdlineage/pkg/lineage"
)

// TablesOptions holds options for the tables command.
type TablesOptions struct {
	Model   string
	Summary bool
	Watch   bool
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	opts := &TablesOptions{}

	cmd := &cobra.Command{
		Use:   "tables [files...]",
		Short: "Extract table lineage from SQL scripts",
		Long: `Extract which tables a SQL script reads from (FROM, JOIN, INTO, USING)
and which tables or views it defines (CREATE ... TABLE|VIEW).

Extraction is a heuristic scan, not a SQL parser: it never fails on
malformed scripts, and unreadable files are reported without aborting
the rest of the batch.`,
		Example: `  # Extract lineage from one script
  tdlineage tables etl/load_orders.sql

  # Resolve a model name against the models directory
  tdlineage tables --model final_summary

  # JSON output for the docs pipeline
  tdlineage tables -o json etl/orders.sql etl/users.sql

  # Per-file summary table
  tdlineage tables --summary etl/*.sql`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "Model name resolved against the models directory")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "Print a per-file summary table")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch input files and re-extract on change")

	return cmd
}

func runTables(cmd *cobra.Command, args []string, opts *TablesOptions) error {
	cfg := getConfig()

	paths := append([]string{}, args...)
	if opts.Model != "" {
		paths = append(paths, filepath.Join(cfg.ModelsDir, opts.Model+".sql"))
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files: pass one or more .sql paths or use --model")
	}

	run := func(ctx context.Context) error {
		batch := lineage.ExtractMany(ctx, paths, cfg.Workers)
		for _, path := range paths {
			if err, ok := batch.Errors[path]; ok {
				slog.Warn("no tables extracted", "path", path, "error", err)
			}
		}

		switch {
		case opts.Summary:
			return renderSummary(cmd.OutOrStdout(), paths, batch)
		case cfg.OutputFormat == "json":
			return renderJSON(cmd.OutOrStdout(), paths, batch)
		default:
			return renderText(cmd.OutOrStdout(), paths, batch)
		}
	}

	if err := run(cmd.Context()); err != nil {
		return err
	}

	if opts.Watch {
		return watchAndRun(cmd.Context(), paths, run)
	}
	return nil
}

// renderText prints lineage per file. The "    - <name>" source lines
// are a fixed format consumed by downstream documentation tooling.
func renderText(w io.Writer, paths []string, batch *lineage.BatchResult) error {
	for _, path := range uniquePaths(paths) {
		res := batch.Results[path]
		if res == nil {
			continue
		}

		fmt.Fprintln(w, path)
		fmt.Fprintln(w, "  source tables:")
		for _, name := range res.SourceTables {
			fmt.Fprintf(w, "    - %s\n", name)
		}
		fmt.Fprintln(w, "  defined tables:")
		for _, name := range res.DefinedTables {
			fmt.Fprintf(w, "    - %s\n", name)
		}
	}
	return nil
}

// fileLineage is the JSON document emitted per input file.
type fileLineage struct {
	Path          string   `json:"path"`
	SourceTables  []string `json:"source_tables"`
	DefinedTables []string `json:"defined_tables"`
	Error         string   `json:"error,omitempty"`
}

func renderJSON(w io.Writer, paths []string, batch *lineage.BatchResult) error {
	docs := make([]fileLineage, 0, len(batch.Results))
	for _, path := range uniquePaths(paths) {
		res := batch.Results[path]
		if res == nil {
			continue
		}
		doc := fileLineage{
			Path:          path,
			SourceTables:  res.SourceTables,
			DefinedTables: res.DefinedTables,
		}
		if err, ok := batch.Errors[path]; ok {
			doc.Error = err.Error()
		}
		docs = append(docs, doc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

func renderSummary(w io.Writer, paths []string, batch *lineage.BatchResult) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Sources", "Defined", "Status"})

	for _, path := range uniquePaths(paths) {
		res := batch.Results[path]
		if res == nil {
			continue
		}
		status := "ok"
		if err, ok := batch.Errors[path]; ok {
			status = err.Error()
		}
		t.AppendRow(table.Row{path, len(res.SourceTables), len(res.DefinedTables), status})
	}

	t.Render()
	return nil
}

// uniquePaths preserves order while dropping duplicate inputs.
func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// watchAndRun re-runs the extraction whenever a watched file changes.
// It watches the parent directories rather than the files themselves so
// editors that replace files on save (rename + create) stay observed.
func watchAndRun(ctx context.Context, paths []string, run func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	slog.Info("watching for changes", "files", len(watched))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				abs = event.Name
			}
			if _, ok := watched[abs]; !ok {
				continue
			}
			slog.Debug("file changed", "path", event.Name)
			if err := run(ctx); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}
