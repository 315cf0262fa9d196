package ops

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/listing"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// Search limits
const (
	MaxQueryLength  = 200
	MaxSnippetChars = 300
)

// Highlight markers inserted before escaping; see escapeSnippetHTML.
const (
	openMarker  = "[[[B]]]"
	closeMarker = "[[[/B]]]"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query      string // required
	Category   string // optional filter
	Difficulty string // optional filter
	Page       int    // 1-indexed, clamped into range
	Limit      int    // default: 20, max: 100
}

// SearchResultItem wraps a tutorial with a match snippet.
type SearchResultItem struct {
	tutorial.Tutorial
	// Snippet is HTML-safe: tutorial text is escaped; only <b>...</b>
	// highlight tags are present.
	Snippet string `json:"snippet"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Query      string             `json:"query"`
	Items      []SearchResultItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"`
}

// Search finds tutorials whose title, description or tags contain the query,
// ignoring case. Results are newest first.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}
	difficulty, err := parseDifficultyFilter(input.Difficulty)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(input.Limit, DefaultSearchLimit, MaxSearchLimit)

	all, err := db.ListTutorials(ctx, database, false)
	if err != nil {
		return nil, err
	}

	matches := listing.Search(all, query)
	if category := strings.TrimSpace(input.Category); category != "" {
		matches = listing.FilterByCategory(matches, category)
	}
	if difficulty != "" {
		matches = listing.FilterByDifficulty(matches, difficulty)
	}
	matches = listing.SortByPublishDate(matches)

	pagination := NewPagination(len(matches), input.Page, limit)
	page := listing.Paginate(matches, pagination.Page, limit)

	highlight := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	items := make([]SearchResultItem, len(page))
	for i, t := range page {
		items[i] = SearchResultItem{
			Tutorial: t,
			Snippet:  truncateSnippet(escapeSnippetHTML(markMatches(snippetSource(t, highlight), highlight)), MaxSnippetChars),
		}
	}

	return &SearchOutput{
		Query:      query,
		Items:      items,
		Pagination: pagination,
		Sort:       "publish_date_desc",
	}, nil
}

// snippetSource picks the field that matched: description, then title, then tags.
func snippetSource(t tutorial.Tutorial, re *regexp.Regexp) string {
	switch {
	case re.MatchString(t.Description):
		return t.Description
	case re.MatchString(t.Title):
		return t.Title
	}
	for _, tag := range t.Tags {
		if re.MatchString(tag) {
			return strings.Join(t.Tags, ", ")
		}
	}
	return t.Description
}

func markMatches(s string, re *regexp.Regexp) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return openMarker + m + closeMarker
	})
}

// truncateSnippet truncates a snippet to about maxChars bytes without splitting
// a rune, a tag or an entity, and closes any <b> left open.
func truncateSnippet(s string, maxChars int) string {
	if maxChars <= 0 {
		return tutorial.EllipsisMarker
	}
	if len(s) <= maxChars {
		return s
	}

	cut := maxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return tutorial.EllipsisMarker
	}
	truncated := s[:cut]

	if lt := strings.LastIndex(truncated, "<"); lt != -1 && !strings.Contains(truncated[lt:], ">") {
		truncated = truncated[:lt]
	}
	if amp := strings.LastIndex(truncated, "&"); amp != -1 && !strings.Contains(truncated[amp:], ";") {
		truncated = truncated[:amp]
	}
	if space := strings.LastIndex(truncated, " "); space > cut/2 {
		truncated = truncated[:space]
	}

	for range strings.Count(truncated, "<b>") - strings.Count(truncated, "</b>") {
		truncated += "</b>"
	}

	return truncated + tutorial.EllipsisMarker
}

// escapeSnippetHTML escapes tutorial text while turning highlight markers into
// <b> tags.
func escapeSnippetHTML(s string) string {
	const (
		openPlaceholder  = "\x00HUB_B_OPEN\x00"
		closePlaceholder = "\x00HUB_B_CLOSE\x00"
	)

	s = strings.ReplaceAll(s, openMarker, openPlaceholder)
	s = strings.ReplaceAll(s, closeMarker, closePlaceholder)
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, openPlaceholder, "<b>")
	s = strings.ReplaceAll(s, closePlaceholder, "</b>")
	return s
}
