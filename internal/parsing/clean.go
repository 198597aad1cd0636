package parsing

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors end a line when HTML is flattened to text
const blockSelectors = "p, li, div, h1, h2, h3, h4, h5, h6, tr, section, article, ul, ol"

// CleanHTML flattens job description markup to plain text, one block per
// line. Text without markup is returned with whitespace normalized.
func CleanHTML(text string) (string, error) {
	if !looksLikeHTML(text) {
		return cleanWhitespace(text), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(doc.Text()), nil
}

func looksLikeHTML(text string) bool {
	start := strings.Index(text, "<")
	return start >= 0 && strings.Contains(text[start:], ">")
}

// cleanWhitespace trims every line, collapses inner runs of spaces and
// drops blank lines
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
