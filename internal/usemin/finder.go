package usemin

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// RevvedFinder maps a logical asset reference to its revisioned counterpart.
// dir is the directory of the document being processed, relative to the site
// root. Find returns ref unchanged when no revisioned artifact exists; the
// rewriter treats equality as "leave the match alone".
type RevvedFinder interface {
	Find(ref, dir string) string
}

var reSchemeURL = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*:)?//`)

// Rewritable reports whether ref is a candidate for rev lookup at all.
// External URLs, protocol-relative URLs, templating placeholders, fragments,
// data: URIs, and the bare site root are never file references; finders
// return them unchanged.
func Rewritable(ref string) bool {
	switch {
	case ref == "" || ref == "/":
		return false
	case reSchemeURL.MatchString(ref):
		return false
	case strings.HasPrefix(ref, "#"):
		return false
	case strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "javascript:"):
		return false
	case strings.Contains(ref, "<%") || strings.Contains(ref, "%>"):
		return false
	}
	return true
}

// ManifestFinder resolves references through an original-to-revisioned map,
// typically produced by the revving stage of the build.
type ManifestFinder struct {
	mapping map[string]string
}

// NewManifestFinder wraps mapping. Keys are site-root-relative paths without
// a leading slash.
func NewManifestFinder(mapping map[string]string) *ManifestFinder {
	if mapping == nil {
		mapping = map[string]string{}
	}
	return &ManifestFinder{mapping: mapping}
}

// LoadManifest reads a JSON object of original-to-revisioned paths.
func LoadManifest(manifestPath string) (*ManifestFinder, error) {
	data, err := os.ReadFile(manifestPath) //nolint:gosec // G304: path comes from the CLI invocation
	if err != nil {
		return nil, err
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, err
	}
	return NewManifestFinder(mapping), nil
}

// Find looks the reference up as written, then joined with the document
// directory. Root-relative references are looked up without the slash and
// get it back on a hit.
func (f *ManifestFinder) Find(ref, dir string) string {
	if !Rewritable(ref) {
		return ref
	}

	if strings.HasPrefix(ref, "/") {
		if revved, ok := f.mapping[strings.TrimPrefix(ref, "/")]; ok {
			return "/" + revved
		}
		return ref
	}

	if revved, ok := f.mapping[ref]; ok {
		return revved
	}
	if revved, ok := f.mapping[joinRef(dir, ref)]; ok {
		// The manifest is keyed from the site root; hand back a path
		// relative to the document again.
		return RelativeLink(dir, revved)
	}
	return ref
}

// DiskFinder resolves references by scanning the on-disk asset tree for a
// revved sibling: a file in the same directory named "<token>.<basename>"
// (the "1234.foo.js" convention).
type DiskFinder struct {
	root string
}

// NewDiskFinder returns a DiskFinder scanning beneath root.
func NewDiskFinder(root string) *DiskFinder {
	return &DiskFinder{root: root}
}

// Find scans the reference's directory and returns the reference with its
// basename swapped for the first revved sibling found, or ref unchanged.
func (f *DiskFinder) Find(ref, dir string) string {
	if !Rewritable(ref) {
		return ref
	}

	logical := ref
	fromRoot := strings.HasPrefix(ref, "/")
	if fromRoot {
		logical = strings.TrimPrefix(ref, "/")
	} else {
		logical = joinRef(dir, ref)
	}

	base := path.Base(logical)
	scanDir := filepath.Join(f.root, filepath.FromSlash(path.Dir(logical)))
	entries, err := os.ReadDir(scanDir)
	if err != nil {
		return ref
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == base || !strings.HasSuffix(name, "."+base) {
			continue
		}
		return ref[:len(ref)-len(base)] + name
	}
	return ref
}
