// Package extract turns HTML documents into plain text suitable for
// similarity checking.
//
// The main-content path uses go-readability to drop navigation, sidebars and
// footers before conversion, so boilerplate shared by every page of a site
// does not inflate similarity scores.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ToText extracts readable text from HTML.
//
// Parameters:
//   - content: io.Reader containing HTML content
//   - selector: optional CSS selector to restrict extraction (empty string for main content extraction)
//   - includeAll: if true, skips readability extraction and converts all HTML content
//   - baseURL: optional URL for context during readability extraction (can be nil)
//
// Returns text with paragraph breaks preserved and inline markup removed.
func ToText(content io.Reader, selector string, includeAll bool, baseURL *url.URL) (string, error) {
	// if selector is specified, use it (override includeAll setting)
	if selector != "" {
		return extractWithSelector(content, selector)
	}

	if includeAll {
		return convertAllHTML(content)
	}

	return extractMainContent(content, baseURL)
}

// extractMainContent uses go-readability to extract the main article content
func extractMainContent(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}

	return convertToText(article.Content)
}

// extractWithSelector uses a CSS selector to extract specific content
func extractWithSelector(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	var htmlParts []string
	selection.Each(func(i int, s *goquery.Selection) {
		html, err := s.Html()
		if err == nil {
			tagName := goquery.NodeName(s)
			htmlParts = append(htmlParts, fmt.Sprintf("<%s>%s</%s>", tagName, html, tagName))
		}
	})

	if len(htmlParts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	return convertToText(strings.Join(htmlParts, "\n"))
}

// convertAllHTML converts all HTML content without filtering
func convertAllHTML(content io.Reader) (string, error) {
	htmlBytes, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML content: %w", err)
	}

	return convertToText(string(htmlBytes))
}

// inlineTags lose their markup and keep only their text; emphasis markers
// and link syntax would otherwise split copied phrases.
var inlineTags = []string{"a", "b", "strong", "i", "em", "code", "span", "sup", "sub", "mark", "u"}

// convertToText converts an HTML string to plain text through the markdown
// converter, keeping block structure but not inline syntax.
func convertToText(htmlString string) (string, error) {
	converter := md.NewConverter("", true, nil)

	converter.Use(md.Plugin(func(c *md.Converter) []md.Rule {
		return []md.Rule{
			{
				Filter: inlineTags,
				Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
					text := selec.Text()
					return &text
				},
			},
			{
				Filter: []string{"img", "script", "style", "noscript"},
				Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
					empty := ""
					return &empty
				},
			},
		}
	}))

	text, err := converter.ConvertString(htmlString)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to text: %w", err)
	}

	cleaned := strings.TrimSpace(text)
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}

	return cleaned, nil
}
