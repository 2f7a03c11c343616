package usemin

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

// Config holds all runtime configuration for the document runner.
type Config struct {
	SourceDir   string
	OutDir      string
	AssetDir    string       // root scanned for revved files (default: OutDir)
	Manifest    string       // JSON rev manifest; overrides the disk scan
	PlanDir     string       // when set, a build plan is written per document
	Threads     int
	Audit       bool
	DryRun      bool
	Debug       bool
	StopOnError bool
	Finder      RevvedFinder // if nil, built from Manifest or AssetDir
	Source      Storage      // if nil, NewLocalStorage(SourceDir) is used
	Out         Storage      // if nil, NewLocalStorage(OutDir) is used
}

// ProcessAll rewrites every HTML and CSS document under the source root
// concurrently and writes the results to the output root.
func ProcessAll(cfg *Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs, err := findDocuments(cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("scan source tree: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No documents found.")
		return nil
	}
	if cfg.Debug {
		fmt.Printf("Found %d documents to rewrite.\n", len(docs))
	}

	source := cfg.Source
	if source == nil {
		source = NewLocalStorage(cfg.SourceDir)
	}
	out := cfg.Out
	if out == nil {
		out = NewLocalStorage(cfg.OutDir)
	}

	finder := cfg.Finder
	if finder == nil {
		if cfg.Manifest != "" {
			finder, err = LoadManifest(cfg.Manifest)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}
		} else {
			assetDir := cfg.AssetDir
			if assetDir == "" {
				assetDir = cfg.OutDir
			}
			finder = NewDiskFinder(assetDir)
		}
	}

	pool, err := ants.NewPool(cfg.Threads)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	g, ctx := errgroup.WithContext(ctx)
	prog := NewProcessProgress(len(docs))
	var failed, missing atomic.Int32

	for _, doc := range docs {
		d := doc
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errCh := make(chan error, 1)
			if err := pool.Submit(func() {
				errCh <- processOne(d, cfg, source, out, finder, &missing, prog)
			}); err != nil {
				return fmt.Errorf("submit task: %w", err)
			}
			if err := <-errCh; err != nil {
				if cfg.StopOnError {
					return err
				}
				failed.Add(1)
				if cfg.Debug {
					log.Printf("rewrite error %s: %v", d, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	prog.Finish()
	if n := failed.Load(); n > 0 {
		fmt.Printf("%d document(s) failed to rewrite.\n", n)
	}
	if n := missing.Load(); n > 0 {
		fmt.Printf("%d rewritten reference(s) do not resolve on disk.\n", n)
	}
	return nil
}

// processOne rewrites a single document and optionally emits its build plan
// and audits the result.
func processOne(doc string, cfg *Config, source, out Storage, finder RevvedFinder,
	missing *atomic.Int32, prog *Progress) error {

	data, err := source.Get(doc)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var opts []Option
	if cfg.Debug {
		opts = append(opts, WithDiagnostics(func(msg string) {
			log.Printf("%s: %s", doc, msg)
		}))
	}

	text := string(data)
	p := NewProcessor(doc, text, finder, opts...)

	var result string
	if IsCSSDocument(doc) {
		// Stylesheets carry no build blocks; only references are revved.
		result = p.ReplaceWithRevved(text)
	} else {
		result = p.Process()
	}

	if len(p.Blocks()) == 0 && strings.Contains(text, "build:") && cfg.Debug {
		log.Printf("%s: no blocks extracted despite build: markers", doc)
	}

	if cfg.PlanDir != "" {
		if plan := PlanFromBlocks(doc, p.Blocks()); !plan.Empty() {
			if err := writePlan(cfg.PlanDir, doc, plan); err != nil {
				return fmt.Errorf("write plan: %w", err)
			}
		}
	}

	if !cfg.DryRun {
		if err := out.PutBytes(doc, []byte(result)); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}

	if cfg.Audit && IsHTMLDocument(doc, data) {
		res, err := AuditDocument(cfg.OutDir, doc, []byte(result))
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		for _, ref := range res.Missing {
			log.Printf("%s: missing asset %s", doc, ref)
		}
		missing.Add(int32(len(res.Missing)))
	}

	prog.Inc()
	return nil
}

// writePlan stores the plan JSON beneath planDir, named after the document.
func writePlan(planDir, doc string, plan *BuildPlan) error {
	data, err := plan.MarshalIndent()
	if err != nil {
		return err
	}
	store := NewLocalStorage(planDir)
	return store.PutBytes(PlanFileName(doc), data)
}

// findDocuments walks root and returns the forward-slash relative paths of
// every HTML and CSS file, sorted for deterministic processing order.
func findDocuments(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = ToPosix(rel)
		ext := strings.ToLower(filepath.Ext(rel))
		if ext == ".html" || ext == ".htm" || ext == ".css" {
			docs = append(docs, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}
