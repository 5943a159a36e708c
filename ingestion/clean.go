package ingestion

import (
	"regexp"
	"strings"
)

// Project Gutenberg boilerplate markers. The corpus texts carry these
// START/END banners around the actual book content.
var gutenbergPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\*\*\* START OF THIS PROJECT GUTENBERG EBOOK.*?\*\*\*`),
	regexp.MustCompile(`(?is)START OF THE PROJECT GUTENBERG EBOOK.*?(\n|$)`),
	regexp.MustCompile(`(?is)THE FULL PROJECT GUTENBERG EBOOK.*?(\n|$)`),
	regexp.MustCompile(`(?is)\*\*\* END OF THIS PROJECT GUTENBERG EBOOK.*?\*\*\*`),
	regexp.MustCompile(`(?is)END OF THE PROJECT GUTENBERG EBOOK.*?(\n|$)`),
	regexp.MustCompile(`(?is)END of PROJECT GUTENBERG EBOOK.*?(\n|$)`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanContent strips Project Gutenberg headers/footers from a book text
// and normalizes all whitespace runs to single spaces.
func CleanContent(content string) string {
	for _, pattern := range gutenbergPatterns {
		content = pattern.ReplaceAllString(content, " ")
	}
	content = whitespaceRun.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}
