package usemin

import (
	"path"
	"regexp"
	"strings"
)

var (
	reBuildOpen  = regexp.MustCompile(`<!--\s*build:([\w-]+)\s+(\S+)\s*-->`)
	reBuildClose = regexp.MustCompile(`<!--\s*endbuild\s*-->`)
	reIndent     = regexp.MustCompile(`^\s*`)
	reAssetRef   = regexp.MustCompile(`(?:href|src)\s*=\s*["']([^"']+)["']`)
	reDataMain   = regexp.MustCompile(`data-main\s*=\s*["']([^"']+)["']`)
)

// RequireJSConfig carries the loader wiring discovered on a data-main script
// tag inside a block. Dest mirrors the owning block's dest so downstream
// bundling steps can be keyed without the block in hand.
type RequireJSConfig struct {
	Dest    string `json:"dest"`
	BaseURL string `json:"baseUrl"`
	Name    string `json:"name"`
}

// Block is one build region delimited by build/endbuild marker comments.
// Dest and every Src entry are stored joined with the document directory;
// a leading "/" on the marker path is recorded via StartFromRoot instead of
// being embedded in Dest.
type Block struct {
	Type          string
	Dest          string
	StartFromRoot bool
	Indent        string
	Src           []string
	Raw           []string
	RequireJS     *RequireJSConfig
}

// ExtractBlocks scans content line by line and returns every well-formed
// block in document order. dir is the document's directory relative to the
// site root. Only one block can be open at a time; an opening marker that is
// never closed produces no block.
func ExtractBlocks(dir, content string) []Block {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var blocks []Block
	var current *Block
	inside := false

	for _, line := range lines {
		indent := reIndent.FindString(line)

		if m := reBuildOpen.FindStringSubmatch(line); m != nil {
			target := m[2]
			fromRoot := strings.HasPrefix(target, "/")
			if fromRoot {
				target = target[1:]
			}
			current = &Block{
				Type:          m[1],
				Dest:          joinRef(dir, target),
				StartFromRoot: fromRoot,
				Indent:        indent,
			}
			inside = true
		}

		if inside && reBuildClose.MatchString(line) {
			current.Raw = append(current.Raw, line)
			blocks = append(blocks, *current)
			current = nil
			inside = false
		}

		if inside && current != nil {
			if m := reAssetRef.FindStringSubmatch(line); m != nil {
				current.Src = append(current.Src, joinRef(dir, m[1]))
				if mm := reDataMain.FindStringSubmatch(line); mm != nil {
					main := ToPosix(mm[1])
					current.RequireJS = &RequireJSConfig{
						Dest:    current.Dest,
						BaseURL: joinRef(dir, path.Dir(main)),
						Name:    strings.TrimSuffix(path.Base(main), path.Ext(main)),
					}
					// The loader output is itself an input to the
					// concat/minify stage.
					current.Src = append(current.Src, current.Dest)
				}
			}
			current.Raw = append(current.Raw, line)
		}
	}

	return blocks
}
