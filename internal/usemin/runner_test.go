package usemin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeDoc writes content at root/rel, creating directories.
func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readDoc returns the content of root/rel.
func readDoc(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// ProcessAll collapses blocks and revs references across the whole tree.
func TestProcessAllEndToEnd(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	writeDoc(t, src, "index.html", strings.Join([]string{
		`<html><head>`,
		`<!-- build:js scripts/app.js -->`,
		`<script src="scripts/a.js"></script>`,
		`<!-- endbuild -->`,
		`<img src="img/logo.png">`,
		`</head></html>`,
	}, "\n"))
	writeDoc(t, src, "styles/site.css", `body { background: url("../img/logo.png"); }`)
	// revved assets on disk
	writeAsset(t, out, "scripts/1a2b.app.js")
	writeAsset(t, out, "img/3c4d.logo.png")

	cfg := &Config{
		SourceDir: src,
		OutDir:    out,
		Threads:   2,
	}
	if err := ProcessAll(cfg); err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}

	html := readDoc(t, out, "index.html")
	if !strings.Contains(html, `<script src="scripts/1a2b.app.js"></script>`) {
		t.Errorf("block not collapsed and revved\n  got: %s", html)
	}
	if !strings.Contains(html, `src="img/3c4d.logo.png"`) {
		t.Errorf("img reference not revved\n  got: %s", html)
	}
	if strings.Contains(html, "endbuild") {
		t.Errorf("markers should be gone\n  got: %s", html)
	}

	css := readDoc(t, out, "styles/site.css")
	if !strings.Contains(css, `url("../img/3c4d.logo.png")`) {
		t.Errorf("css url() not revved\n  got: %s", css)
	}
}

// A manifest overrides the disk scan.
func TestProcessAllManifest(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeDoc(t, src, "index.html", `<script src="foo.js"></script>`)
	manifest := filepath.Join(src, "rev-manifest.json")
	if err := os.WriteFile(manifest, []byte(`{"foo.js": "1234.foo.js"}`), 0600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := &Config{
		SourceDir: src,
		OutDir:    out,
		Manifest:  manifest,
		Threads:   1,
	}
	if err := ProcessAll(cfg); err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}

	if got := readDoc(t, out, "index.html"); !strings.Contains(got, "1234.foo.js") {
		t.Errorf("manifest mapping not applied\n  got: %s", got)
	}
}

// Dry runs process everything but write nothing.
func TestProcessAllDryRun(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeDoc(t, src, "index.html", `<p>hello</p>`)

	cfg := &Config{
		SourceDir: src,
		OutDir:    out,
		DryRun:    true,
		Threads:   1,
	}
	if err := ProcessAll(cfg); err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}

	if _, err := os.Stat(filepath.Join(out, "index.html")); !os.IsNotExist(err) {
		t.Error("dry run must not write output files")
	}
}

// Plan files are emitted for documents whose blocks route work downstream.
func TestProcessAllPlanOutput(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	plans := t.TempDir()
	writeDoc(t, src, "index.html", strings.Join([]string{
		`<!-- build:js scripts/app.js -->`,
		`<script src="scripts/a.js"></script>`,
		`<!-- endbuild -->`,
	}, "\n"))
	writeDoc(t, src, "plain.html", `<p>no blocks</p>`)

	cfg := &Config{
		SourceDir: src,
		OutDir:    out,
		PlanDir:   plans,
		Threads:   1,
	}
	if err := ProcessAll(cfg); err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}

	plan := readDoc(t, plans, "index_html.plan.json")
	if !strings.Contains(plan, `"scripts/app.js"`) {
		t.Errorf("plan missing concat dest\n  got: %s", plan)
	}
	if _, err := os.Stat(filepath.Join(plans, "plain_html.plan.json")); !os.IsNotExist(err) {
		t.Error("blockless document should not produce a plan file")
	}
}

// An empty source tree is not an error.
func TestProcessAllNoDocuments(t *testing.T) {
	cfg := &Config{
		SourceDir: t.TempDir(),
		OutDir:    t.TempDir(),
		Threads:   1,
	}
	if err := ProcessAll(cfg); err != nil {
		t.Fatalf("ProcessAll on empty tree: %v", err)
	}
}

func TestFindDocuments(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "index.html", "")
	writeDoc(t, src, "sub/page.htm", "")
	writeDoc(t, src, "styles/site.css", "")
	writeDoc(t, src, "scripts/app.js", "")
	writeDoc(t, src, "notes.txt", "")

	docs, err := findDocuments(src)
	if err != nil {
		t.Fatalf("findDocuments: %v", err)
	}
	want := []string{"index.html", "styles/site.css", "sub/page.htm"}
	if len(docs) != len(want) {
		t.Fatalf("docs = %v, want %v", docs, want)
	}
	for i := range want {
		if docs[i] != want[i] {
			t.Errorf("docs[%d] = %q, want %q", i, docs[i], want[i])
		}
	}
}
