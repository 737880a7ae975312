package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tordrt/tablediff"
	"github.com/tordrt/tablediff/internal/config"
	"github.com/tordrt/tablediff/internal/diff"
	"github.com/tordrt/tablediff/internal/formatter"
	"github.com/tordrt/tablediff/internal/logging"
	"github.com/tordrt/tablediff/internal/table"
	"github.com/tordrt/tablediff/internal/web"
)

// cliFlags holds every flag value; one instance per command tree.
type cliFlags struct {
	key           string
	tableA        string
	tableB        string
	outputFile    string
	outputDir     string
	format        string
	maxDiffs      int
	duplicates    string
	doubledQuotes bool
	previewRows   int
	sortField     string
	rowSort       string
	direction     string
	logLevel      string

	host string
	port int
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}

	root := &cobra.Command{
		Use:   "tablediff [flags] <a> <b>",
		Short: "Compare two CSV tables by key column",
		Long: `tablediff compares two tables column by column and row by row.

Each side is a CSV file, "-" for standard input, or a postgres://, mysql://
or sqlite:// URL combined with --table-a/--table-b (a table name or a SELECT
query). Rows are matched on --key; without a key only headers are compared.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, f, args)
		},
	}
	addCompareFlags(root, f)
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error (default: LOG_LEVEL or info)")

	compare := &cobra.Command{
		Use:   "compare [flags] <a> <b>",
		Short: "Compare two tables and write a report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, f, args)
		},
	}
	addCompareFlags(compare, f)

	columns := &cobra.Command{
		Use:   "columns [flags] <a> <b>",
		Short: "Compare headers only and list possible key columns",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(cmd, f, args)
		},
	}
	columns.Flags().StringVar(&f.tableA, "table-a", "", "Table name or SELECT query for a database source A")
	columns.Flags().StringVar(&f.tableB, "table-b", "", "Table name or SELECT query for a database source B")
	columns.Flags().StringVarP(&f.format, "format", "f", "text", "Output format: text, markdown or json")
	columns.Flags().BoolVar(&f.doubledQuotes, "doubled-quotes", false, `Read "" inside quoted fields as a literal quote`)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}
	serve.Flags().StringVar(&f.host, "host", "", "Listen host (default: SERVER_HOST or 0.0.0.0)")
	serve.Flags().IntVarP(&f.port, "port", "p", 0, "Listen port (default: SERVER_PORT or 8080)")

	root.AddCommand(compare, columns, serve)
	return root
}

func addCompareFlags(cmd *cobra.Command, f *cliFlags) {
	cmd.Flags().StringVarP(&f.key, "key", "k", "", "Key column shared by both tables (empty: compare headers only)")
	cmd.Flags().StringVar(&f.tableA, "table-a", "", "Table name or SELECT query for a database source A")
	cmd.Flags().StringVar(&f.tableB, "table-b", "", "Table name or SELECT query for a database source B")
	cmd.Flags().StringVarP(&f.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "d", "", "Output directory for multi-file output (text or markdown)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "Output format: "+strings.Join(formatter.Formats, ", "))
	cmd.Flags().IntVar(&f.maxDiffs, "max-diffs", diff.DefaultMaxDiffsPerColumn, "Maximum mismatches kept per column")
	cmd.Flags().StringVar(&f.duplicates, "duplicates", "last", "Row kept for a repeated key: last or first")
	cmd.Flags().BoolVar(&f.doubledQuotes, "doubled-quotes", false, `Read "" inside quoted fields as a literal quote`)
	cmd.Flags().IntVar(&f.previewRows, "preview-rows", formatter.DefaultPreviewRows, "Rows shown per table, 0 for all")
	cmd.Flags().StringVar(&f.sortField, "sort", diff.FieldKey, "Order of mismatch tables: key, a or b")
	cmd.Flags().StringVar(&f.rowSort, "row-sort", "", "Column ordering missing-row tables (default: the key column)")
	cmd.Flags().StringVar(&f.direction, "dir", "asc", "Sort direction: asc or desc")
}

// setup loads .env and configuration, then configures logging. Flags that
// were set explicitly override the environment.
func setup(cmd *cobra.Command, f *cliFlags) (*config.Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-diffs") {
		cfg.Compare.MaxDiffsPerColumn = f.maxDiffs
	}
	if flags.Changed("duplicates") {
		cfg.Compare.DuplicateKeys = f.duplicates
	}
	if flags.Changed("doubled-quotes") {
		cfg.Compare.DoubledQuotes = f.doubledQuotes
	}
	if flags.Changed("preview-rows") {
		cfg.Compare.PreviewRows = f.previewRows
	}
	if flags.Changed("host") {
		cfg.Server.Host = f.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = f.port
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func runCompare(cmd *cobra.Command, f *cliFlags, args []string) error {
	cfg, err := setup(cmd, f)
	if err != nil {
		return err
	}

	if f.outputDir != "" && f.outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	diffOpts, err := cfg.DiffOptions(strings.TrimSpace(f.key))
	if err != nil {
		return err
	}
	fmtOpts, err := formatterOptions(f, cfg.Compare.PreviewRows)
	if err != nil {
		return err
	}

	a := tablediff.Source{Location: args[0], Table: f.tableA, Stdin: cmd.InOrStdin()}
	b := tablediff.Source{Location: args[1], Table: f.tableB, Stdin: cmd.InOrStdin()}
	opts := &tablediff.Options{Diff: diffOpts, DoubledQuoteLiteral: cfg.Compare.DoubledQuotes}

	out := &tablediff.OutputOptions{
		Writer:    cmd.OutOrStdout(),
		OutputDir: f.outputDir,
		Format:    f.format,
		Formatter: fmtOpts,
	}
	if f.outputFile != "" {
		file, err := os.Create(f.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := file.Close(); err != nil {
				slog.Warn("failed to close output file", "error", err)
			}
		}()
		out.Writer = file
	}

	if err := tablediff.CompareAndFormat(cmd.Context(), a, b, opts, out); err != nil {
		return err
	}
	if f.outputDir != "" {
		slog.Info("report written", "dir", f.outputDir, "format", f.format)
	}
	return nil
}

func formatterOptions(f *cliFlags, previewRows int) (formatter.Options, error) {
	dir, err := diff.ParseDirection(f.direction)
	if err != nil {
		return formatter.Options{}, err
	}
	if _, err := diff.SortEntries(nil, f.sortField, dir); err != nil {
		return formatter.Options{}, err
	}
	return formatter.Options{
		PreviewRows: previewRows,
		RowSort:     f.rowSort,
		EntrySort:   f.sortField,
		Direction:   dir,
	}, nil
}

func runColumns(cmd *cobra.Command, f *cliFlags, args []string) error {
	cfg, err := setup(cmd, f)
	if err != nil {
		return err
	}

	tk := table.Tokenizer{DoubledQuoteLiteral: cfg.Compare.DoubledQuotes}
	a, err := tablediff.LoadTable(cmd.Context(), tablediff.Source{Location: args[0], Table: f.tableA, Stdin: cmd.InOrStdin()}, tk)
	if err != nil {
		return fmt.Errorf("failed to load table A: %w", err)
	}
	b, err := tablediff.LoadTable(cmd.Context(), tablediff.Source{Location: args[1], Table: f.tableB, Stdin: cmd.InOrStdin()}, tk)
	if err != nil {
		return fmt.Errorf("failed to load table B: %w", err)
	}

	return writeColumns(cmd.OutOrStdout(), f.format,
		diff.DiffColumns(a.Headers, b.Headers),
		diff.KeyCandidates(a.Headers, b.Headers),
	)
}

// writeColumns prints a header comparison and the usable key columns.
func writeColumns(w io.Writer, format string, cd diff.ColumnDiff, candidates []string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			ColumnDiff    diff.ColumnDiff `json:"column_diff"`
			KeyCandidates []string        `json:"key_candidates"`
		}{cd, candidates})
	case "markdown":
		md := formatter.NewMarkdownFormatter(w, formatter.DefaultOptions())
		md.FormatColumnDiff(cd)
		_, err := fmt.Fprintf(w, "\n**Key candidates:** %s\n", orNone(candidates, ", "))
		return err
	case "text":
		if cd.Identical {
			fmt.Fprintf(w, "COLUMNS identical (%d)\n", len(cd.Common))
		} else {
			fmt.Fprintln(w, "COLUMNS differ")
			fmt.Fprintf(w, "  only in A: %s\n", orNone(cd.OnlyA, " "))
			fmt.Fprintf(w, "  only in B: %s\n", orNone(cd.OnlyB, " "))
		}
		_, err := fmt.Fprintf(w, "KEY CANDIDATES %s\n", orNone(candidates, " "))
		return err
	default:
		return fmt.Errorf("invalid format: %s (must be 'text', 'markdown' or 'json')", format)
	}
}

func orNone(items []string, sep string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, sep)
}

func runServe(cmd *cobra.Command, f *cliFlags) error {
	cfg, err := setup(cmd, f)
	if err != nil {
		return err
	}
	slog.Debug("configuration loaded", "config", cfg.String())

	server, err := web.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
