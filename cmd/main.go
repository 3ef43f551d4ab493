// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"inkblot/internal/boxmap"
	"inkblot/internal/config"
	"inkblot/internal/core"
	"inkblot/internal/formats"
	"inkblot/internal/formats/csvfile"
	"inkblot/internal/formats/imagefile"
	"inkblot/internal/formats/pdfscan"
	"inkblot/internal/formats/pdftext"
	"inkblot/internal/formats/plaintext"
	"inkblot/internal/observability"
	"inkblot/internal/render"
	"inkblot/internal/report"
	"inkblot/internal/sanitize"
	"inkblot/internal/validators"
	"inkblot/internal/version"
)

func main() {
	// Parse command line flags
	inputFile := flag.String("file", "", "Path to the input file to redact")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	listChecks := flag.Bool("list-checks", false, "List available detection categories")
	outputFormat := flag.String("format", "text", "Summary format: text or json")
	outputDir := flag.String("output-dir", "", "Directory where redacted files are written (default from config)")
	checksToRun := flag.String("checks", "", "Detection categories to run: EMAIL, PHONE, SSN, CREDIT_CARD, or combinations like 'EMAIL,SSN' (default: all)")
	minConfidence := flag.Float64("min-confidence", -1, "Minimum detection confidence in [0,1] (default from config)")
	column := flag.String("redact-column", "", "For tabular files: redact an entire column by header name or 0-based index")
	detectOnly := flag.Bool("detect-only", false, "Run detection and print the summary without writing output")
	debug := flag.Bool("debug", false, "Enable debug logging")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showHelp := flag.Bool("help", false, "Show help information")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}
	if *showHelp {
		flag.Usage()
		return
	}

	cfg := config.LoadConfigOrDefault(*configFile)

	if *listProfiles {
		for _, name := range cfg.ListProfiles() {
			fmt.Printf("%-12s %s\n", name, cfg.Profiles[name].Description)
		}
		return
	}

	// Apply profile settings before flag overrides
	checks := cfg.Defaults.Checks
	confidence := cfg.Defaults.MinConfidence
	outDir := cfg.Defaults.OutputDir
	if *profileName != "" {
		profile := cfg.GetProfile(*profileName)
		if profile == nil {
			fmt.Fprintf(os.Stderr, "Error: profile %q not found (available: %v)\n", *profileName, cfg.ListProfiles())
			os.Exit(1)
		}
		checks = profile.Checks
		confidence = profile.MinConfidence
		if profile.OutputDir != "" {
			outDir = profile.OutputDir
		}
		if profile.NoColor {
			*noColor = true
		}
		if profile.Debug {
			*debug = true
		}
	}
	if *checksToRun != "" {
		checks = *checksToRun
	}
	if *minConfidence >= 0 {
		confidence = *minConfidence
	}
	if *outputDir != "" {
		outDir = *outputDir
	}

	if *noColor || cfg.Defaults.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
		*noColor = true
	}

	level := observability.ObservabilityMetrics
	if *debug || cfg.Defaults.Debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	validatorRegistry := validators.NewDefaultRegistry(config.EnabledChecks(checks), observer)

	if *listChecks {
		for _, category := range validatorRegistry.Categories() {
			fmt.Println(category)
		}
		return
	}

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	formatRegistry := buildFormatRegistry(observer, cfg)
	defer formatRegistry.CleanupAll()

	pipeline := core.NewPipeline(core.Options{
		Observer:      observer,
		Formats:       formatRegistry,
		Validators:    validatorRegistry,
		MinConfidence: confidence,
		PaddingPx:     cfg.Detection.PaddingPx,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, pipeline, cfg, runOptions{
		inputFile:    *inputFile,
		outputDir:    outDir,
		outputFormat: *outputFormat,
		column:       *column,
		detectOnly:   *detectOnly,
		noColor:      *noColor,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	inputFile    string
	outputDir    string
	outputFormat string
	column       string
	detectOnly   bool
	noColor      bool
}

func run(ctx context.Context, pipeline *core.Pipeline, cfg *config.Config, opts runOptions) error {
	data, err := os.ReadFile(opts.inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	session, err := pipeline.Open(ctx, opts.inputFile, data)
	if err != nil {
		return err
	}
	defer session.Close()

	if opts.column != "" {
		if err := redactColumn(session, opts.column); err != nil {
			return err
		}
	} else {
		if err := session.DetectAll(ctx, 0); err != nil {
			return err
		}
	}

	items := session.Items()
	outPath := ""
	// Column redaction modifies the document directly, without items to apply.
	if !opts.detectOnly && (len(items) > 0 || opts.column != "") {
		if len(items) > 0 {
			if err := session.Apply(); err != nil {
				return err
			}
		}

		sanOpts := sanitizerOptions(cfg)
		out, err := session.Export(ctx, formats.ExportOptions{
			JPEGQuality: cfg.Export.JPEGQuality,
			Sanitize:    &sanOpts,
		})
		if err != nil {
			return err
		}

		saver := &core.DiskSaver{Dir: opts.outputDir}
		outPath, err = saver.Save(opts.inputFile, out)
		if err != nil {
			return err
		}
	}

	summary := report.Build(opts.inputFile, session.FormatID, outPath, items, session.Doc.SanitizeReport)
	if opts.outputFormat == "json" {
		return summary.WriteJSON(os.Stdout)
	}
	summary.WriteText(os.Stdout, opts.noColor)
	return nil
}

// redactColumn handles the tabular whole-column path. The selector is
// parsed as an index when it is all digits, a header name otherwise.
func redactColumn(session *core.Session, selector string) error {
	adapter, ok := session.Adapter.(*csvfile.Adapter)
	if !ok {
		return fmt.Errorf("-redact-column only applies to tabular files, input is %s", session.FormatID)
	}

	var sel any = selector
	var idx int
	if _, err := fmt.Sscanf(selector, "%d", &idx); err == nil && fmt.Sprintf("%d", idx) == selector {
		sel = idx
	}
	return adapter.RedactColumn(session.Doc, sel)
}

func buildFormatRegistry(observer *observability.StandardObserver, cfg *config.Config) *formats.Registry {
	registry := formats.NewRegistry()

	padding := cfg.Detection.PaddingPx
	if padding <= 0 {
		padding = boxmap.DefaultPaddingPx
	}
	scale := cfg.Render.Scale

	// No OCR engine ships with the CLI; image and scanned-PDF sessions can
	// load and take manual boxes, and report clearly when asked to extract.
	registry.Register(formats.FormatText, plaintext.NewAdapter(observer))
	registry.Register(formats.FormatCSV, csvfile.NewAdapter(observer))
	registry.Register(formats.FormatImage, imagefile.NewAdapter(observer, nil, padding))
	registry.Register(formats.FormatPDFText, pdftext.NewAdapter(observer, &render.ImageExtractRenderer{}, scale))
	registry.Register(formats.FormatPDFScan, pdfscan.NewAdapter(observer, nil, nil, scale, padding))

	return registry
}

func sanitizerOptions(cfg *config.Config) sanitize.Options {
	return sanitize.Options{
		InfoDict:    cfg.Sanitizer.InfoDict,
		XMP:         cfg.Sanitizer.XMP,
		Annotations: cfg.Sanitizer.Annotations,
		Forms:       cfg.Sanitizer.Forms,
		Attachments: cfg.Sanitizer.Attachments,
		JavaScript:  cfg.Sanitizer.JavaScript,
	}
}
