// Command linksort sorts the social media links of a local .xlsx or .docx file
// by platform, prints them as a table and writes the Excel and PDF exports.
//
// Usage:
//
//	linksort [flags] FILE
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/JonMunkholm/LinkSort/internal/config"
	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/JonMunkholm/LinkSort/internal/decode"
	"github.com/JonMunkholm/LinkSort/internal/export"
	"github.com/JonMunkholm/LinkSort/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional and must not override the caller's environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	xlsxPath string
	pdfPath  string
	outDir   string
	title    string
	strict   bool
	quiet    bool
	logLevel string
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, string, error) {
	var opts options
	fs := flag.NewFlagSet("linksort", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.xlsxPath, "xlsx", export.XLSXFileName, "Excel output file name; empty to skip")
	fs.StringVar(&opts.pdfPath, "pdf", export.PDFFileName, "PDF output file name; empty to skip")
	fs.StringVar(&opts.outDir, "out", ".", "directory for the output files")
	fs.StringVar(&opts.title, "title", cfg.Export.ReportTitle, "PDF report title")
	fs.BoolVar(&opts.strict, "strict", cfg.Classify.StrictHosts, "match platforms on the URL host only")
	fs.BoolVar(&opts.quiet, "q", false, "do not print the table")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: linksort [flags] FILE")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, "", errors.New("exactly one input file is required")
	}
	return opts, fs.Arg(0), nil
}

// run is main without the process exit, returning the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "linksort:", err)
		return 1
	}

	opts, input, err := parseFlags(args, cfg, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "linksort:", err)
		return 2
	}

	logger := logging.New(stderr, opts.logLevel, "text")

	kind := core.KindFromFilename(input)
	if kind == core.KindUnsupported {
		fmt.Fprintf(stderr, "linksort: %s is not an .xlsx or .docx file, nothing to do\n", filepath.Base(input))
		return 0
	}

	res, err := process(ctx, input, kind, cfg, opts.strict, logger)
	if err != nil {
		msg := err.Error()
		if core.IsUserFacing(err) {
			msg = core.FormatUserError(err)
		}
		fmt.Fprintln(stderr, "linksort:", msg)
		logger.Debug("process failed", "file", input, "error", err)
		return 1
	}

	if !opts.quiet {
		fmt.Fprintln(stdout, renderTable(res))
		fmt.Fprintln(stdout, renderSummary(res))
	}

	written, err := writeExports(res, opts)
	for _, path := range written {
		fmt.Fprintln(stdout, "wrote", path)
	}
	if err != nil {
		fmt.Fprintln(stderr, "linksort:", err)
		return 1
	}
	return 0
}

func process(ctx context.Context, path string, kind core.Kind, cfg *config.Config, strict bool, logger *slog.Logger) (*core.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Upload.Timeout)
	defer cancel()

	ingestor := core.NewIngestor(
		decode.Spreadsheet{UnzipSizeLimit: cfg.Upload.MaxUnzipSize},
		decode.Document{MaxXMLSize: cfg.Upload.MaxUnzipSize},
	)
	content, ok, err := ingestor.Ingest(ctx, kind, f)
	if err != nil {
		return nil, err
	}
	if !ok {
		return core.NewResult(), nil
	}

	candidates := content.Candidates()
	logger.Debug("extracted candidates", "file", path, "count", len(candidates))
	classifier := core.NewClassifier(core.WithStrictHosts(strict), core.WithClassifierLogger(logger))
	return classifier.Classify(candidates), nil
}

// writeExports writes each requested export and returns the paths written.
func writeExports(res *core.Result, opts options) ([]string, error) {
	targets := []struct {
		name   string
		format export.Format
	}{
		{opts.xlsxPath, export.FormatXLSX},
		{opts.pdfPath, export.FormatPDF},
	}

	var written []string
	for _, t := range targets {
		if t.name == "" {
			continue
		}
		path := t.name
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.outDir, path)
		}
		if err := writeFile(path, t.format, res, opts.title); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, format export.Format, res *core.Result, title string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.Write(f, format, res, export.ReportOptions{Title: title})
}
