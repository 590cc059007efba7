// Package markup renders the small, trusted HTML subset that the feedback
// server returns (line breaks, paragraphs, emphasis, lists and error
// paragraphs) as styled terminal text.
package markup

import (
	"io"
	"regexp"
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/net/html"

	"github.com/abhisek/examcoach/internal/ui/theme"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// BoldToHTML converts **bold** spans to <strong> elements. Nothing else of
// markdown is interpreted.
func BoldToHTML(text string) string {
	return boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
}

// ErrorHTML wraps a server-reported message in an error paragraph.
func ErrorHTML(message string) string {
	return `<p class="error">` + message + `</p>`
}

// Render converts trusted markup to styled text wrapped at width. A width
// of zero or less disables wrapping.
func Render(src string, width int) string {
	r := renderer{}
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Unparseable tail: show it verbatim rather than dropping it.
				r.text(string(z.Raw()))
			}
			break
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			r.text(tok.Data)
		case html.StartTagToken:
			r.open(tok)
		case html.SelfClosingTagToken:
			r.open(tok)
			r.close(tok.Data)
		case html.EndTagToken:
			r.close(tok.Data)
		}
	}

	out := strings.Trim(r.b.String(), "\n")
	if width <= 0 {
		return out
	}
	return lipgloss.NewStyle().Width(width).Render(out)
}

type renderer struct {
	b      strings.Builder
	bold   int
	italic int
	errs   []bool // one entry per open <p>, true when it has class="error"
}

func (r *renderer) style() lipgloss.Style {
	st := theme.Body
	for _, e := range r.errs {
		if e {
			st = theme.ErrorText
			break
		}
	}
	if r.bold > 0 {
		st = st.Bold(true)
	}
	if r.italic > 0 {
		st = st.Italic(true)
	}
	return st
}

func (r *renderer) text(s string) {
	if s == "" {
		return
	}
	// Source newlines are layout, not content; <br> carries the breaks.
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" && r.b.Len() > 0 && strings.HasSuffix(r.b.String(), "\n") {
		return
	}
	r.b.WriteString(r.style().Render(s))
}

func (r *renderer) open(tok html.Token) {
	switch tok.Data {
	case "br":
		r.b.WriteString("\n")
	case "strong", "b", "h1", "h2", "h3", "h4", "h5", "h6":
		r.breakIfHeading(tok.Data)
		r.bold++
	case "em", "i":
		r.italic++
	case "p", "div":
		r.paragraph()
		r.errs = append(r.errs, hasClass(tok, "error"))
	case "li":
		r.newline()
		r.b.WriteString("• ")
	}
}

func (r *renderer) close(tag string) {
	switch tag {
	case "strong", "b", "h1", "h2", "h3", "h4", "h5", "h6":
		if r.bold > 0 {
			r.bold--
		}
		r.breakIfHeading(tag)
	case "em", "i":
		if r.italic > 0 {
			r.italic--
		}
	case "p", "div":
		if n := len(r.errs); n > 0 {
			r.errs = r.errs[:n-1]
		}
		r.paragraph()
	case "ul", "ol":
		r.newline()
	}
}

func (r *renderer) breakIfHeading(tag string) {
	if len(tag) == 2 && tag[0] == 'h' {
		r.newline()
	}
}

// newline ends the current line unless it is already empty.
func (r *renderer) newline() {
	if r.b.Len() > 0 && !strings.HasSuffix(r.b.String(), "\n") {
		r.b.WriteString("\n")
	}
}

// paragraph leaves one blank line after existing content.
func (r *renderer) paragraph() {
	if r.b.Len() == 0 {
		return
	}
	s := r.b.String()
	switch {
	case strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		r.b.WriteString("\n")
	default:
		r.b.WriteString("\n\n")
	}
}

func hasClass(tok html.Token, class string) bool {
	for _, a := range tok.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
