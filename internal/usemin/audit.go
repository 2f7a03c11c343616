package usemin

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// AuditResult reports asset references of one rewritten document that do not
// resolve to files beneath the output root.
type AuditResult struct {
	Doc     string
	Total   int
	Missing []string
}

// AuditDocument parses a rewritten HTML document and checks that every local
// asset reference it carries exists beneath root. Anchors pointing at pages
// (extension-less targets) are skipped; anchors to file-like targets are
// audited like any other asset. The pass is read-only.
func AuditDocument(root, docPath string, content []byte) (*AuditResult, error) {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, err
	}

	result := &AuditResult{Doc: ToPosix(docPath)}
	dir := DocDir(docPath)

	check := func(ref string) {
		if !Rewritable(ref) {
			return
		}
		result.Total++
		logical := ref
		if strings.HasPrefix(ref, "/") {
			logical = strings.TrimPrefix(ref, "/")
		} else {
			logical = joinRef(dir, ref)
		}
		full := filepath.Join(root, filepath.FromSlash(logical))
		if _, err := os.Stat(full); err != nil {
			result.Missing = append(result.Missing, ref)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "img", "input":
				if v := attrVal(n, "src"); v != "" {
					check(v)
				}
			case "link", "a":
				if v := attrVal(n, "href"); v != "" && isAssetExt(v) {
					check(v)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return result, nil
}

// attrVal returns the trimmed value of the named attribute, or "".
func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// isAssetExt filters hrefs down to file-like targets (stylesheets, icons,
// downloads); extension-less hrefs are page links.
func isAssetExt(ref string) bool {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return path.Ext(ref) != ""
}
