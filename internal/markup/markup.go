// Package markup turns freeform model output into a tree of display
// nodes: code blocks, headings and text segments at the block level,
// bold spans and autolinks inline. Rendering is a pure function of the
// input text; presentation layers decide how each node is painted.
package markup

import "strings"

// Block is a block-level display node.
type Block interface {
	// Visible returns the node's visible text, with structural
	// markers removed.
	Visible() string
}

// Span is an inline display node within a text or heading block.
type Span interface {
	Visible() string
}

// TextBlock is a run of ordinary text, already split into inline spans.
type TextBlock struct {
	Spans []Span
}

func (b *TextBlock) Visible() string { return visibleSpans(b.Spans) }

// HeadingBlock is a single heading line, its content split into inline spans.
type HeadingBlock struct {
	Spans []Span
}

func (b *HeadingBlock) Visible() string { return visibleSpans(b.Spans) }

// CodeBlock is the verbatim content between a pair of fences.
type CodeBlock struct {
	// Language is the tag found on the opening fence line, if any.
	Language string
	// Code is kept verbatim, whitespace included.
	Code string
}

func (b *CodeBlock) Visible() string { return b.Code }

// TextSpan is literal inline text.
type TextSpan struct {
	Text string
}

func (s *TextSpan) Visible() string { return s.Text }

// BoldSpan is an emphasized inline run. Its content is not reprocessed
// for nested markers.
type BoldSpan struct {
	Text string
}

func (s *BoldSpan) Visible() string { return s.Text }

// LinkSpan is a strict http/https autolink. The visible text and the
// target are the same matched substring; presentation layers open it
// in a new navigation context.
type LinkSpan struct {
	URL string
}

func (s *LinkSpan) Visible() string { return s.URL }

func visibleSpans(spans []Span) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Visible())
	}
	return b.String()
}

// Visible concatenates the visible text of all blocks, restoring the
// newlines that separate them in the source.
func Visible(blocks []Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.Visible())
	}
	return b.String()
}
