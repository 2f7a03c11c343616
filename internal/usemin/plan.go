package usemin

import (
	"encoding/json"
	"path"
	"strings"

	sanitize "github.com/mrz1836/go-sanitize"
)

// ConcatStep is one concatenation target and its ordered inputs.
type ConcatStep struct {
	Dest string   `json:"dest"`
	Src  []string `json:"src"`
}

// BuildPlan routes extracted blocks into downstream build steps:
// every known block type feeds a concat step keyed by dest; "js" blocks
// additionally feed minification and "css" blocks CSS processing, while the
// "-concat" variants stop at concatenation. Blocks carrying loader metadata
// are routed to the module-loader bundling step instead of a plain concat
// step, with their dest still registered as a minification input.
type BuildPlan struct {
	Doc       string            `json:"doc"`
	Concat    []ConcatStep      `json:"concat,omitempty"`
	Minify    []string          `json:"minify,omitempty"`
	CSSMin    []string          `json:"cssmin,omitempty"`
	RequireJS []RequireJSConfig `json:"requirejs,omitempty"`
}

// PlanFromBlocks maps the blocks of one document onto a BuildPlan.
func PlanFromBlocks(docPath string, blocks []Block) *BuildPlan {
	plan := &BuildPlan{Doc: ToPosix(docPath)}

	for _, b := range blocks {
		switch b.Type {
		case "js":
			plan.Minify = append(plan.Minify, b.Dest)
			if b.RequireJS != nil {
				plan.RequireJS = append(plan.RequireJS, *b.RequireJS)
				continue
			}
			plan.Concat = append(plan.Concat, ConcatStep{Dest: b.Dest, Src: b.Src})
		case "js-concat":
			plan.Concat = append(plan.Concat, ConcatStep{Dest: b.Dest, Src: b.Src})
		case "css":
			plan.CSSMin = append(plan.CSSMin, b.Dest)
			plan.Concat = append(plan.Concat, ConcatStep{Dest: b.Dest, Src: b.Src})
		case "css-concat":
			plan.Concat = append(plan.Concat, ConcatStep{Dest: b.Dest, Src: b.Src})
		}
	}
	return plan
}

// Empty reports whether the plan routes no work at all.
func (p *BuildPlan) Empty() bool {
	return len(p.Concat) == 0 && len(p.Minify) == 0 &&
		len(p.CSSMin) == 0 && len(p.RequireJS) == 0
}

// MarshalIndent renders the plan as indented JSON.
func (p *BuildPlan) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// PlanFileName derives a flat, filesystem-safe plan file name from the
// document path, e.g. "build/my file.html" -> "build_my_file_html.plan.json".
func PlanFileName(docPath string) string {
	var parts []string
	for _, seg := range strings.Split(ToPosix(docPath), "/") {
		if seg == "" || seg == "." {
			continue
		}
		ext := path.Ext(seg)
		if ext != "" {
			seg = seg[:len(seg)-len(ext)] + "_" + ext[1:]
		}
		if s := sanitize.PathName(seg); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "doc.plan.json"
	}
	return strings.Join(parts, "_") + ".plan.json"
}
