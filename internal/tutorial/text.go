package tutorial

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
)

// WordsPerMinute is the reading speed used by EstimateReadTime.
const WordsPerMinute = 200

// EllipsisMarker is appended to truncated excerpts.
const EllipsisMarker = "..."

var (
	// whitespaceRegex matches one or more whitespace characters
	whitespaceRegex = regexp.MustCompile(`\s+`)

	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	slugStripRegex  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex  = regexp.MustCompile(`\s+`)
	slugHyphenRegex = regexp.MustCompile(`-+`)
)

// Normalize trims, lowercases and collapses internal whitespace to single spaces.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// Slugify converts text into a URL-safe slug.
// Output contains only [a-z0-9-], never starts or ends with a hyphen and never
// repeats one, so Slugify(Slugify(x)) == Slugify(x).
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStripRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpaceRegex.ReplaceAllString(s, "-")
	s = slugHyphenRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// StripMarkup removes HTML tags, decodes entities and collapses whitespace.
func StripMarkup(content string) string {
	s := tagRegex.ReplaceAllString(content, "")
	s = html.UnescapeString(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Excerpt returns the plain-text prefix of content, at most maxLength characters
// (runes) followed by EllipsisMarker when truncated. Text at or under the limit
// is returned without a marker. Whitespace runs in the stripped text collapse to
// one space either way.
func Excerpt(content string, maxLength int) string {
	plain := StripMarkup(content)
	if utf8.RuneCountInString(plain) <= maxLength {
		return plain
	}
	if maxLength <= 0 {
		return EllipsisMarker
	}

	runes := []rune(plain)
	prefix := strings.TrimRightFunc(string(runes[:maxLength]), unicode.IsSpace)
	return prefix + EllipsisMarker
}

// EstimateReadTime returns the reading time in whole minutes at WordsPerMinute,
// rounded up. Content with at least one word takes at least one minute; empty
// content takes zero.
func EstimateReadTime(content string) int {
	words := len(strings.Fields(StripMarkup(content)))
	if words == 0 {
		return 0
	}
	return max(1, int(math.Ceil(float64(words)/WordsPerMinute)))
}

// FormatReadTime renders a minute count as "N min read".
func FormatReadTime(minutes int) string {
	return fmt.Sprintf("%d min read", max(minutes, 1))
}

// FormatDate renders a publish date the way tutorial cards display it.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("January 2, 2006")
}

// RenderMarkdown converts markdown to HTML with goldmark.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText renders markdown and strips the resulting markup.
// Falls back to stripping md directly if rendering fails.
func PlainText(md string) string {
	rendered, err := RenderMarkdown(md)
	if err != nil {
		return StripMarkup(md)
	}
	return StripMarkup(rendered)
}
