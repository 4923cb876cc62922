package webserver

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"gemchat/internal/debug"
	"gemchat/internal/markup"
)

var log = debug.GetLogger()

// formatMessage runs assistant text through the markup renderer and
// paints the resulting nodes as HTML.
func formatMessage(content string) template.HTML {
	var b strings.Builder
	for _, block := range markup.Render(content) {
		switch block := block.(type) {
		case *markup.HeadingBlock:
			b.WriteString("<h3>")
			writeSpans(&b, block.Spans)
			b.WriteString("</h3>")
		case *markup.CodeBlock:
			fmt.Fprintf(&b, `<pre class="line-numbers"><code class="language-%s">%s</code></pre>`,
				html.EscapeString(block.Language),
				html.EscapeString(block.Code))
		case *markup.TextBlock:
			b.WriteString("<p>")
			writeSpans(&b, block.Spans)
			b.WriteString("</p>")
		}
	}
	return template.HTML(b.String())
}

func writeSpans(b *strings.Builder, spans []markup.Span) {
	for _, span := range spans {
		switch span := span.(type) {
		case *markup.BoldSpan:
			b.WriteString("<strong>" + html.EscapeString(span.Text) + "</strong>")
		case *markup.LinkSpan:
			escaped := html.EscapeString(span.URL)
			fmt.Fprintf(b, `<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, escaped, escaped)
		case *markup.TextSpan:
			b.WriteString(strings.ReplaceAll(html.EscapeString(span.Text), "\n", "<br>"))
		}
	}
}
