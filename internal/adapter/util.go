package adapter

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// salaryAnchorRE finds a salary-looking token: a currency symbol or an
// explicit range keyword followed by digits.
var salaryAnchorRE = regexp.MustCompile(`(?i)[$\x{20ac}\x{00a3}]\s*\d|(salary|compensation|pay range)\D{0,20}\d`)

const mentionWindow = 90

// salaryMention extracts a short window of plain text around the first
// salary-looking token in an HTML job description, so the salary parser
// is not run over the whole description. Empty when nothing salary-shaped
// is present.
func salaryMention(htmlContent string) string {
	plain := extractText(htmlContent)
	loc := salaryAnchorRE.FindStringIndex(plain)
	if loc == nil {
		return ""
	}
	start := loc[0] - mentionWindow/3
	if start < 0 {
		start = 0
	}
	end := loc[0] + mentionWindow
	if end > len(plain) {
		end = len(plain)
	}
	return strings.TrimSpace(plain[start:end])
}
