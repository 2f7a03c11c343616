package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/szinya/usemin/internal/usemin"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: usemin [source-dir] [options]

Rewrites asset references in HTML and CSS documents: collapses build blocks
(<!-- build:js app.js --> ... <!-- endbuild -->) into single references and
redirects remaining references to their revisioned files.

Arguments:
  source-dir              Directory of documents to rewrite (same as -source)

Options:
  -source string          Directory of documents to rewrite
  -out string             Output directory (default: rewrite in place)
  -assets string          Root scanned for revved files (default: output directory)
  -manifest string        JSON manifest mapping original to revved paths
  -plan string            Directory to write per-document build plans into
  -threads int            Concurrent rewrite threads (default: 3)
  -audit                  Verify rewritten references resolve on disk
  -dry-run                Process documents without writing any output
  -stop-on-error          Stop immediately on first rewrite error (default: continue)
  -debug                  Enable verbose debug logging
  -version                Print version and exit
  -h / -help              Show this help and exit
`)
}

func main() {
	// Use ContinueOnError so we can intercept ErrHelp and unknown-flag errors
	// and control the exit code ourselves.
	fs := flag.NewFlagSet("usemin", flag.ContinueOnError)
	fs.Usage = usage

	var (
		sourceFlag  string
		outFlag     string
		assetsFlag  string
		manifest    string
		planFlag    string
		threadsFlag int
		audit       bool
		dryRun      bool
		stopOnError bool
		debug       bool
	)

	fs.StringVar(&sourceFlag, "source", "", "Directory of documents to rewrite")
	fs.StringVar(&outFlag, "out", "", "Output directory")
	fs.StringVar(&assetsFlag, "assets", "", "Root scanned for revved files")
	fs.StringVar(&manifest, "manifest", "", "JSON manifest mapping original to revved paths")
	fs.StringVar(&planFlag, "plan", "", "Directory to write per-document build plans into")
	fs.IntVar(&threadsFlag, "threads", 3, "Concurrent rewrite threads")
	fs.BoolVar(&audit, "audit", false, "Verify rewritten references resolve on disk")
	fs.BoolVar(&dryRun, "dry-run", false, "Process documents without writing any output")
	fs.BoolVar(&stopOnError, "stop-on-error", false, "Stop immediately on first rewrite error")
	fs.BoolVar(&debug, "debug", false, "Enable verbose debug logging")

	// Handle -version / -h / -help before the flag parser so we control the exit code.
	for _, a := range os.Args[1:] {
		if a == "-version" || a == "--version" {
			fmt.Printf("usemin %s (commit %s, built %s)\n", version, commit, date)
			os.Exit(0)
		}
		if a == "-h" || a == "-help" || a == "--help" {
			usage()
			os.Exit(0)
		}
	}

	// Extract a leading positional source directory before flag parsing so
	// that "usemin dist -audit" works (the stdlib flag package stops at the
	// first non-flag argument).
	args := os.Args[1:]
	var positionalSource string
	if len(args) > 0 && args[0] != "" && !strings.HasPrefix(args[0], "-") {
		positionalSource = args[0]
		args = args[1:]
	}

	if err := fs.Parse(args); err != nil {
		// Unknown/malformed flag: fs already printed the error message
		os.Exit(2)
	}

	// Merge positional source with -source flag (explicit -source wins)
	if sourceFlag == "" {
		sourceFlag = positionalSource
	}

	if threadsFlag <= 0 {
		fmt.Fprintln(os.Stderr, "error: -threads must be greater than 0")
		os.Exit(1)
	}
	if sourceFlag == "" {
		fmt.Fprintln(os.Stderr, "error: source directory is required")
		usage()
		os.Exit(1)
	}
	if info, err := os.Stat(sourceFlag); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "error: %q is not a directory\n", sourceFlag)
		os.Exit(1)
	}

	outDir := outFlag
	if outDir == "" {
		outDir = sourceFlag
	}

	cfg := &usemin.Config{
		SourceDir:   sourceFlag,
		OutDir:      outDir,
		AssetDir:    assetsFlag,
		Manifest:    manifest,
		PlanDir:     planFlag,
		Threads:     threadsFlag,
		Audit:       audit,
		DryRun:      dryRun,
		Debug:       debug,
		StopOnError: stopOnError,
	}

	fmt.Printf("Rewriting documents under %s ...\n", sourceFlag)
	if err := usemin.ProcessAll(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
