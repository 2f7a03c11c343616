package usemin

import (
	"path"
	"path/filepath"
	"strings"
)

// DocDir returns the directory portion of a document path in forward-slash
// form, with "." collapsed to the empty string so joining it back is a no-op.
func DocDir(docPath string) string {
	dir := path.Dir(ToPosix(docPath))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// RelativeLink returns the relative path from fromDir to toFile.
func RelativeLink(fromDir, toFile string) string {
	if fromDir == "" {
		return ToPosix(toFile)
	}
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(toFile))
	if err != nil {
		return ToPosix(toFile)
	}
	return ToPosix(rel)
}

// ToPosix converts backslashes to forward slashes.
func ToPosix(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// joinRef resolves an in-document reference against the document directory.
// The result never carries a leading "./"; a root-relative reference keeps
// its leading slash stripped by the caller before the join.
func joinRef(dir, ref string) string {
	return path.Join(dir, ToPosix(ref))
}
