package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spektr-org/erlens"
	"github.com/spektr-org/erlens/config"
	"github.com/spektr-org/erlens/engine"
	"github.com/spektr-org/erlens/schema"
	"github.com/spektr-org/erlens/server"
	"github.com/spektr-org/erlens/source"
)

// ============================================================================
// ERLENS CLI — Engagement analysis for post exports
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	filePath := flag.String("file", "", "Path to CSV export")
	useSample := flag.Bool("sample", false, "Analyze the built-in sample dataset")
	useSource := flag.Bool("source", false, "Read posts from the database in the config source section")
	configPath := flag.String("config", "", "Path to YAML config")
	basis := flag.String("basis", "", "ER denominator: followers, reach, impressions")
	top := flag.Int("top", 0, "Posts in the top and bottom rankings")
	hashtags := flag.Int("hashtags", 0, "Rows in the hashtag views (0 = all tags)")
	strictDates := flag.Bool("strict-dates", false, "Only accept YYYY-MM-DD HH:MM timestamps")
	view := flag.String("view", viewReport, "Output view: "+strings.Join(views, ", "))
	format := flag.String("format", "json", "Output format: json, pretty, text, csv")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	serve := flag.Bool("serve", false, "Run the HTTP API instead of a one-off analysis")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `erlens: engagement analysis for post exports

Usage:
  erlens --file posts.csv
  erlens --file posts.csv --basis reach --view top --format csv --out top.csv
  erlens --sample --view insights --format text
  erlens --config erlens.yaml --source --view summary --format pretty
  erlens --serve --config erlens.yaml

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment (override the config file, loaded from .env when present):
  ERLENS_ADDR, PORT, ERLENS_BASIS, ERLENS_TOP_N, ERLENS_HASHTAG_LIMIT,
  ERLENS_STRICT_DATES, ERLENS_SOURCE_DRIVER, ERLENS_SOURCE_DSN, ERLENS_SOURCE_QUERY

Formats:
  json      Full JSON output (default)
  pretty    Pretty-printed JSON
  text      Human-readable digest or aligned table
  csv       Table views as CSV (ready for Sheets/Excel)
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("erlens %s\n", version)
		os.Exit(0)
	}

	// ── Config ────────────────────────────────────────────────────────────
	if err := config.LoadEnv(); err != nil {
		log.Printf("⚠️ .env not loaded: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("Invalid configuration: %v", err)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["basis"] {
		cfg.Analysis.Basis = *basis
	}
	if set["top"] {
		cfg.Analysis.TopN = *top
	}
	if set["hashtags"] {
		cfg.Analysis.HashtagLimit = *hashtags
	}
	if set["strict-dates"] {
		cfg.Analysis.StrictDates = *strictDates
	}
	if err := cfg.Validate(); err != nil {
		fatalf("Invalid flags: %v", err)
	}

	// ── Serve mode ────────────────────────────────────────────────────────
	if *serve {
		if err := server.New(cfg).Run(); err != nil {
			fatalf("Server failed: %v", err)
		}
		return
	}

	if !validView(*view) {
		fatalf("Unknown view %q (expected one of %s)", *view, strings.Join(views, ", "))
	}

	src, err := pickSource(*filePath, *useSample, *useSource, cfg.Source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	// ── Output writer ─────────────────────────────────────────────────────
	writer := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	// ── Analyze ───────────────────────────────────────────────────────────
	b, _ := engine.ParseBasis(cfg.Analysis.Basis)
	opts := []erlens.Option{
		erlens.WithBasis(b),
		erlens.WithTopN(cfg.Analysis.TopN),
		erlens.WithHashtagLimit(cfg.Analysis.HashtagLimit),
	}
	if cfg.Analysis.StrictDates {
		opts = append(opts, erlens.WithStrictDateFormat())
	}

	a, err := erlens.AnalyzeSource(context.Background(), src, opts...)
	if err != nil {
		var schemaErr *schema.SchemaError
		if errors.As(err, &schemaErr) {
			fatalf("Missing required columns: %s", strings.Join(schemaErr.MissingColumns, ", "))
		}
		fatalf("Analysis failed: %v", err)
	}

	d := a.Diagnostics
	log.Printf("🔍 Columns resolved by %s (%d rows, %d malformed, header as data: %v)",
		d.Resolver, d.RowsRead, d.MalformedRows, d.HeaderAsData)
	for _, w := range d.Warnings {
		log.Printf("⚠️ %s: %d %s value(s) set to null, e.g. %q", w.Column, w.Count, w.Kind, w.Samples)
	}
	log.Printf("📊 %s", a.Report.Text.Headline)

	// ── Render output ─────────────────────────────────────────────────────
	if err := render(writer, a, *view, *format); err != nil {
		fatalf("%v", err)
	}
	if *outFile != "" {
		log.Printf("📄 %s written to %s", *view, *outFile)
	}
}

// pickSource requires exactly one of --file, --sample and --source.
func pickSource(file string, sample, fromConfig bool, sc config.SourceConfig) (source.Source, error) {
	chosen := 0
	for _, b := range []bool{file != "", sample, fromConfig} {
		if b {
			chosen++
		}
	}
	if chosen != 1 {
		return nil, errors.New("exactly one of --file, --sample or --source is required")
	}

	switch {
	case file != "":
		return source.File{Path: file}, nil
	case sample:
		return source.Sample(), nil
	}

	switch sc.Driver {
	case "":
		return nil, errors.New("--source needs source.driver in the config or ERLENS_SOURCE_DRIVER")
	case "mongo":
		return source.Mongo{URI: sc.DSN, Database: sc.Database, Collection: sc.Collection}, nil
	}
	return source.SQL{Driver: sc.Driver, DSN: sc.DSN, Query: sc.Query}, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
