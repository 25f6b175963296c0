// Command extract_items scrapes item names and image ids from a saved Maxroll
// build guide and writes a JSON summary plus a sorted lookup table.
//
// Usage:
//
//	extract_items [flags] [guide.html]
//
// Without a file argument the page is read from stdin until EOF.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/meur/gearforge/internal/catalog"
	"github.com/meur/gearforge/internal/config"
	"github.com/meur/gearforge/internal/console"
	"github.com/meur/gearforge/internal/extract"
	"github.com/meur/gearforge/internal/logger"
)

// errInputNotFound marks a missing input file.
var errInputNotFound = errors.New("input file not found")

func main() {
	out := console.New()
	if err := run(os.Args[1:], os.Stdin, out); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		out.Fail("Error: %v", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, out *console.Printer) error {
	fs := flag.NewFlagSet("extract_items", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("GEARFORGE_CONFIG"), "YAML config file")
	strategy := fs.String("strategy", "", "Scan strategy: regex or dom")
	summaryPath := fs.String("summary", "", "JSON summary output path")
	tablePath := fs.String("table", "", "Lookup table output path")
	tableFormat := fs.String("format", "", "Lookup table format: ts or go")
	goPackage := fs.String("package", "", "Package clause for the go table format")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg.Extract, *strategy, *summaryPath, *tablePath, *tableFormat, *goPackage)
	if fs.NArg() > 0 {
		cfg.Extract.Input = fs.Arg(0)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	scanStrategy, err := extract.ParseStrategy(cfg.Extract.Strategy)
	if err != nil {
		return err
	}
	format, err := catalog.ParseFormat(cfg.Extract.TableFormat)
	if err != nil {
		return err
	}

	document, err := readInput(cfg.Extract.Input, stdin, out)
	if err != nil {
		return err
	}
	log.Debug("Read input",
		logger.String("input", cfg.Extract.Input),
		logger.Int("bytes", len(document)),
		logger.String("strategy", string(scanStrategy)),
	)

	extractor := extract.New(
		extract.WithStrategy(scanStrategy),
		extract.WithProgress(func(r extract.Record) {
			out.Plain("Found: %s -> %s", r.Name, r.ImageID)
		}),
	)
	items, err := extractor.Extract(document)
	if err != nil {
		return err
	}

	summary, err := catalog.MarshalSummary(items)
	if err != nil {
		return err
	}
	if err := catalog.WriteFile(cfg.Extract.SummaryPath, summary); err != nil {
		return err
	}
	out.Plain("")
	out.Success("Extracted %d items to %s", len(items), cfg.Extract.SummaryPath)

	table, err := catalog.RenderTable(items, format, catalog.TableOptions{Package: cfg.Extract.GoPackage})
	if err != nil {
		return err
	}
	if err := catalog.WriteFile(cfg.Extract.TablePath, table); err != nil {
		return err
	}
	out.Success("Created %s lookup table: %s", formatLabel(format), cfg.Extract.TablePath)

	log.Debug("Extraction complete",
		logger.Int("items", len(items)),
		logger.String("summary", cfg.Extract.SummaryPath),
		logger.String("table", cfg.Extract.TablePath),
	)
	return nil
}

func applyFlags(e *config.ExtractConfig, strategy, summary, table, format, pkg string) {
	if strategy != "" {
		e.Strategy = strategy
	}
	if summary != "" {
		e.SummaryPath = summary
	}
	if table != "" {
		e.TablePath = table
	}
	if format != "" {
		e.TableFormat = format
	}
	if pkg != "" {
		e.GoPackage = pkg
	}
}

func readInput(path string, stdin io.Reader, out *console.Printer) (string, error) {
	if path == "" {
		out.Plain("Usage: extract_items <html_file>")
		out.Plain("Or paste HTML content and press Ctrl+D (Unix) or Ctrl+Z (Windows)")
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", errInputNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func formatLabel(f catalog.Format) string {
	if f == catalog.FormatGo {
		return "Go"
	}
	return "TypeScript"
}
