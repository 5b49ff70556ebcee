package observability

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainSnippet renders a snippet as plain text with highlights wrapped in asterisks.
func PlainSnippet(snippet string) string {
	if strings.TrimSpace(snippet) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return strings.Join(strings.Fields(snippet), " ")
	}
	doc.Find("highlighttext, mark").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("*" + html.EscapeString(s.Text()) + "*")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}
