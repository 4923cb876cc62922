package markup

import (
	"regexp"
	"strings"
)

const fenceMarker = "```"

var (
	// Bold pairs and strict autolinks are matched in a single pass so
	// that a URL between ** markers is swallowed by the bold span
	// rather than linked separately. Bold wins over link.
	inlineRegexp = regexp.MustCompile(`\*\*.*?\*\*|https?://\S+`)
)

// Render parses content into display nodes. Three nested passes: code
// fences first, then headings and horizontal rules on the remaining
// text, then bold spans and autolinks within each text segment. Each
// pass only sees text not already claimed by an outer one.
func Render(content string) []Block {
	parts := strings.Split(content, fenceMarker)
	var blocks []Block
	var pending string
	for i, part := range parts {
		if i%2 == 0 {
			pending += part
			continue
		}
		if i == len(parts)-1 {
			// Odd number of fence markers: the trailing fence has no
			// partner, so it is rendered back as ordinary text.
			pending += fenceMarker + part
			continue
		}
		blocks = append(blocks, renderText(pending)...)
		pending = ""
		language, code := splitFence(part)
		blocks = append(blocks, &CodeBlock{Language: language, Code: code})
	}
	return append(blocks, renderText(pending)...)
}

// splitFence separates the optional language tag on the opening fence
// line from the verbatim code below it.
func splitFence(part string) (language, code string) {
	index := strings.IndexByte(part, '\n')
	if index < 0 {
		return "", part
	}
	language = strings.TrimSpace(part[:index])
	code = strings.TrimSuffix(part[index+1:], "\n")
	return language, code
}

// renderText applies the heading pass to a non-code segment, feeding
// everything else through the inline pass.
func renderText(segment string) []Block {
	lines := strings.Split(segment, "\n")
	// Newlines separating this segment from adjacent code fences are
	// structural, not content.
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var blocks []Block
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		text := strings.Join(run, "\n")
		run = nil
		if strings.TrimSpace(text) == "" {
			return
		}
		blocks = append(blocks, &TextBlock{Spans: renderSpans(text)})
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "### "):
			flush()
			blocks = append(blocks, &HeadingBlock{Spans: renderSpans(strings.TrimSpace(line[4:]))})
		case line == "---":
			// Horizontal rules render as nothing.
			flush()
		default:
			run = append(run, line)
		}
	}
	flush()
	return blocks
}

// renderSpans applies the inline pass to a text run.
func renderSpans(text string) []Span {
	var spans []Span
	last := 0
	for _, match := range inlineRegexp.FindAllStringIndex(text, -1) {
		start, end := match[0], match[1]
		if start > last {
			spans = append(spans, &TextSpan{Text: text[last:start]})
		}
		matched := text[start:end]
		if strings.HasPrefix(matched, "**") {
			spans = append(spans, &BoldSpan{Text: matched[2 : len(matched)-2]})
		} else {
			spans = append(spans, &LinkSpan{URL: matched})
		}
		last = end
	}
	if last < len(text) {
		spans = append(spans, &TextSpan{Text: text[last:]})
	}
	return spans
}
