package extractor

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Literal fallbacks used when a heuristic chain finds nothing.
const (
	FallbackTitle       = "Sin título"
	FallbackDescription = "Sin descripción disponible"
	FallbackBody        = "No se pudo extraer el contenido de esta página."
)

const (
	maxBodyRunes        = 5000
	maxDescriptionRunes = 200
	maxBodyParagraphs   = 10
)

// page wraps a parsed HTML document and exposes the field heuristics.
// Callers never see the DOM; they only get back plain strings, so the
// parsing strategy can change without touching them.
type page struct {
	doc *html.Node
}

func parsePage(r io.Reader) (*page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &page{doc: doc}, nil
}

// Title tries <title>, then og:title, then the first <h1>.
func (p *page) Title() string {
	if t := strings.TrimSpace(nodeText(findElement(p.doc, atom.Title))); t != "" {
		return t
	}
	if t := strings.TrimSpace(p.metaContent("property", "og:title")); t != "" {
		return t
	}
	if t := collapseSpaces(nodeText(findElement(p.doc, atom.H1))); t != "" {
		return t
	}
	return FallbackTitle
}

// Description tries the description meta tag, then og:description, then
// the first paragraph truncated with an ellipsis.
func (p *page) Description() string {
	if d := strings.TrimSpace(p.metaContent("name", "description")); d != "" {
		return d
	}
	if d := strings.TrimSpace(p.metaContent("property", "og:description")); d != "" {
		return d
	}
	if d := collapseSpaces(nodeText(findElement(p.doc, atom.P))); d != "" {
		return truncateRunes(d, maxDescriptionRunes) + "..."
	}
	return FallbackDescription
}

// Body extracts readable text from the main content region: <article>,
// else <main>, else the first few paragraphs of the whole document.
func (p *page) Body() string {
	var text string
	if region := findElement(p.doc, atom.Article); region != nil {
		text = renderRegion(region)
	} else if region := findElement(p.doc, atom.Main); region != nil {
		text = renderRegion(region)
	} else {
		var parts []string
		for _, par := range findElements(p.doc, atom.P, maxBodyParagraphs) {
			if t := renderRegion(par); t != "" {
				parts = append(parts, t)
			}
		}
		text = strings.Join(parts, "\n\n")
	}

	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackBody
	}
	return truncateRunes(text, maxBodyRunes)
}

// Text returns all visible text of the document, used for classification.
func (p *page) Text() string {
	return nodeText(p.doc)
}

func (p *page) metaContent(attrKey, attrVal string) string {
	var found string
	walkNodes(p.doc, func(n *html.Node) bool {
		if found != "" {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			if attr(n, attrKey) == attrVal {
				found = attr(n, "content")
			}
		}
		return true
	})
	return found
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// renderRegion flattens a content subtree to plain text: <br> becomes a
// newline, paragraphs become blank-line separated blocks, headings get a
// bold marker, scripts and styles are dropped.
func renderRegion(region *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(collapseSpaces(n.Data))
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			case atom.Br:
				sb.WriteByte('\n')
				return
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				sb.WriteString("\n\n**")
				sb.WriteString(collapseSpaces(nodeText(n)))
				sb.WriteString("**\n\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			sb.WriteString("\n\n")
		}
	}
	walk(region)

	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	return strings.Join(lines, "\n")
}

// findElement returns the first element with the given atom, depth-first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// findElements returns up to limit elements with the given atom.
func findElements(n *html.Node, a atom.Atom, limit int) []*html.Node {
	var out []*html.Node
	walkNodes(n, func(n *html.Node) bool {
		if len(out) >= limit {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// walkNodes visits nodes depth-first; fn returning false skips the subtree.
func walkNodes(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

// nodeText collects all text under a node, skipping scripts and styles.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var spaceRuns = regexp.MustCompile(`[ \t]+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
