package tutorial

import (
	"fmt"
	"strings"
)

// ValidationError describes the first field of a record that breaks the data model.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks the Tutorial invariants that do not depend on the rest of the
// directory. Slug uniqueness is checked by CheckUniqueSlugs.
func Validate(t Tutorial) error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if t.Slug == "" || Slugify(t.Slug) != t.Slug {
		return &ValidationError{Field: "slug", Reason: fmt.Sprintf("%q is not a valid slug", t.Slug)}
	}
	if !t.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Reason: fmt.Sprintf("%q is not one of Beginner, Intermediate, Advanced", t.Difficulty)}
	}
	return nil
}

// SlugConflict identifies two tutorials sharing a slug in one category.
type SlugConflict struct {
	Category string
	Slug     string
}

// CheckUniqueSlugs returns the first (category, slug) pair used more than once.
// Categories are compared case-insensitively.
func CheckUniqueSlugs(tutorials []Tutorial) (SlugConflict, bool) {
	seen := make(map[SlugConflict]bool, len(tutorials))
	for _, t := range tutorials {
		key := SlugConflict{Category: Normalize(t.Category), Slug: t.Slug}
		if seen[key] {
			return SlugConflict{Category: t.Category, Slug: t.Slug}, true
		}
		seen[key] = true
	}
	return SlugConflict{}, false
}
