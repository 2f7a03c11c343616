package usemin

import (
	"fmt"
	"strings"
)

// Processor rewrites one document: it collapses build blocks into single
// references to their built artifact and redirects remaining asset
// references through a RevvedFinder. It never touches formatting outside of
// the spans it replaces.
type Processor struct {
	docPath string
	dir     string
	content string
	eol     string
	blocks  []Block
	finder  RevvedFinder
	diag    func(string)
}

// Option configures a Processor.
type Option func(*Processor)

// WithDiagnostics routes progress and data-loss notices to fn.
// The default sink discards them.
func WithDiagnostics(fn func(string)) Option {
	return func(p *Processor) {
		if fn != nil {
			p.diag = fn
		}
	}
}

// NewProcessor builds a Processor for the document at docPath (relative to
// the site root) holding content. Block extraction runs eagerly so Blocks
// is available before any rewriting.
func NewProcessor(docPath, content string, finder RevvedFinder, opts ...Option) *Processor {
	eol := "\n"
	if strings.Contains(content, "\r\n") {
		eol = "\r\n"
	}
	p := &Processor{
		docPath: ToPosix(docPath),
		dir:     DocDir(docPath),
		content: content,
		eol:     eol,
		finder:  finder,
		diag:    func(string) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.blocks = ExtractBlocks(p.dir, content)
	return p
}

// Blocks returns the extracted blocks in document order. The returned slice
// is a copy; the extraction result is immutable after construction.
func (p *Processor) Blocks() []Block {
	out := make([]Block, len(p.blocks))
	copy(out, p.blocks)
	return out
}

// ReplaceWith renders the single line that stands in for a block: the
// block's indent followed by a script or stylesheet tag pointing at the
// block's dest, expressed relative to the document. Unknown block types
// yield an empty line; the drop is reported through the diagnostic sink
// because it removes the whole region from the output.
func (p *Processor) ReplaceWith(block Block) string {
	dest := RelativeLink(p.dir, block.Dest)
	if block.StartFromRoot {
		dest = "/" + dest
	}
	switch block.Type {
	case "css", "css-concat":
		return fmt.Sprintf(`%s<link rel="stylesheet" href="%s">`, block.Indent, dest)
	case "js", "js-concat":
		return fmt.Sprintf(`%s<script src="%s"></script>`, block.Indent, dest)
	default:
		p.diag(fmt.Sprintf("dropping block of unknown type %q (dest %s)", block.Type, block.Dest))
		return ""
	}
}

// ReplaceBlocks returns the document with every block's raw span replaced by
// its single-line substitute. Replacement walks a cursor over the original
// text in block order, consuming each raw span once, so two blocks with
// identical raw text each replace their own occurrence.
func (p *Processor) ReplaceBlocks() string {
	var out strings.Builder
	content := p.content
	cursor := 0

	for _, block := range p.blocks {
		key := strings.Join(block.Raw, p.eol)
		i := strings.Index(content[cursor:], key)
		if i < 0 {
			continue
		}
		at := cursor + i
		out.WriteString(content[cursor:at])
		out.WriteString(p.ReplaceWith(block))
		cursor = at + len(key)
	}
	out.WriteString(content[cursor:])
	return out.String()
}

// ReplaceWithRevved runs the pattern classes over content in declared order,
// routing each captured reference through the finder and splicing in the
// revisioned path when one exists. Everything around the reference inside a
// match is preserved verbatim.
func (p *Processor) ReplaceWithRevved(content string) string {
	for _, pc := range revvedPatterns {
		content = p.replaceClass(content, pc)
	}
	return content
}

func (p *Processor) replaceClass(content string, pc patternClass) string {
	return pc.re.ReplaceAllStringFunc(content, func(match string) string {
		idx := pc.re.FindStringSubmatchIndex(match)
		if idx == nil || idx[2] < 0 {
			return match
		}
		ref := match[idx[2]:idx[3]]
		revved := p.finder.Find(ref, p.dir)
		if revved == ref {
			return match
		}
		rewritten := match[:idx[2]] + revved + match[idx[3]:]
		p.diag(fmt.Sprintf("%s: %s -> %s", pc.name, match, rewritten))
		return rewritten
	})
}

// Process is the composed pipeline: collapse blocks, then rev the remaining
// references.
func (p *Processor) Process() string {
	return p.ReplaceWithRevved(p.ReplaceBlocks())
}
