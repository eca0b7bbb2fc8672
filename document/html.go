package document

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ExtractJSONLD returns the bodies of the <script type="application/ld+json">
// elements of an HTML page, in document order. Empty scripts are skipped.
func ExtractJSONLD(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var scripts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && isJSONLDScript(n) {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			if body := strings.TrimSpace(sb.String()); body != "" {
				scripts = append(scripts, body)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return scripts, nil
}

func isJSONLDScript(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "type" {
			typ, _, _ := strings.Cut(attr.Val, ";")
			return strings.EqualFold(strings.TrimSpace(typ), "application/ld+json")
		}
	}
	return false
}
