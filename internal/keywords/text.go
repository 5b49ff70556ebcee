// Package keywords turns a vacancy into the keyword sets the query compiler consumes.
// Extraction is delegated to an LLM; results are memoized per vacancy.
package keywords

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionText returns the visible text of an HTML vacancy description,
// text nodes joined with single spaces.
func DescriptionText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			if text := strings.TrimSpace(s.Text()); text != "" {
				*parts = append(*parts, text)
			}
			return
		}
		collectText(s, parts)
	})
}

// ParseList splits a comma-separated edit of a keyword list into trimmed,
// non-empty terms.
func ParseList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList renders a keyword list for editing; the inverse of ParseList.
func JoinList(terms []string) string {
	return strings.Join(terms, ", ")
}
