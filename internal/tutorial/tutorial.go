package tutorial

import (
	"strings"
	"time"
)

// Difficulty is the ordinal classification of a tutorial's complexity.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists the valid difficulty values in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty matches s against the known difficulties, ignoring case and
// surrounding whitespace.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Valid reports whether d is one of the enumerated difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Tutorial is a single content record describing a learning article.
type Tutorial struct {
	// ID uniquely identifies the tutorial across the directory
	ID string `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Category is the owning category's slug
	Category string `json:"category"`

	// Slug is URL-safe and unique within Category
	Slug string `json:"slug"`

	Author string `json:"author"`

	// ReadTime is a human-readable estimate such as "8 min read"
	ReadTime string `json:"read_time"`

	Difficulty Difficulty `json:"difficulty"`

	// PublishDate is a calendar date stored as UTC midnight
	PublishDate time.Time `json:"publish_date"`

	Tags     []string `json:"tags"`
	Featured bool     `json:"featured"`

	// Body is optional markdown content rendered on the detail page
	Body string `json:"body,omitempty"`
}

// WithoutBody returns a copy of t with the markdown body stripped.
// Used for list views and history snapshots.
func (t Tutorial) WithoutBody() Tutorial {
	t.Body = ""
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

// Path returns the tutorial's site-relative URL path.
func (t Tutorial) Path() string {
	return "/tutorials/" + t.Category + "/" + t.Slug
}

// Category is a named grouping of tutorials.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`

	// TutorialCount is derived from the live directory, see listing.CountByCategory
	TutorialCount int `json:"tutorial_count"`
}

// ReadingHistoryItem is a tutorial snapshot plus the time it was read.
type ReadingHistoryItem struct {
	Tutorial Tutorial  `json:"tutorial"`
	ReadAt   time.Time `json:"read_at"`
}

// Date truncates t to a calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "2006-01-02" calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(s))
}
