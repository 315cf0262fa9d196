// Package listing holds the pure transformations over a tutorial directory:
// filtering, search, ordering, pagination and related-tutorial lookup.
//
// No function mutates its input. Every function returns a new slice, and an
// empty (non-nil) slice when nothing matches.
package listing

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// fold applies Unicode case folding for case-insensitive comparison.
// A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// filter returns the tutorials for which keep reports true, in input order.
func filter(tutorials []tutorial.Tutorial, keep func(tutorial.Tutorial) bool) []tutorial.Tutorial {
	result := make([]tutorial.Tutorial, 0, len(tutorials))
	for _, t := range tutorials {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result
}

// FilterByCategory returns the tutorials whose category equals category,
// ignoring case.
func FilterByCategory(tutorials []tutorial.Tutorial, category string) []tutorial.Tutorial {
	want := fold(category)
	return filter(tutorials, func(t tutorial.Tutorial) bool {
		return fold(t.Category) == want
	})
}

// FilterByDifficulty returns the tutorials whose difficulty equals difficulty,
// ignoring case.
func FilterByDifficulty(tutorials []tutorial.Tutorial, difficulty string) []tutorial.Tutorial {
	want := fold(difficulty)
	return filter(tutorials, func(t tutorial.Tutorial) bool {
		return fold(string(t.Difficulty)) == want
	})
}

// Featured returns the tutorials flagged as featured.
func Featured(tutorials []tutorial.Tutorial) []tutorial.Tutorial {
	return filter(tutorials, func(t tutorial.Tutorial) bool {
		return t.Featured
	})
}

// Search returns the tutorials whose title, description or any tag contains
// query as a case-insensitive substring.
//
// A blank query matches every tutorial that has at least one non-empty
// searchable field.
func Search(tutorials []tutorial.Tutorial, query string) []tutorial.Tutorial {
	q := fold(strings.TrimSpace(query))
	return filter(tutorials, func(t tutorial.Tutorial) bool {
		for _, field := range searchFields(t) {
			if field == "" {
				continue
			}
			if strings.Contains(fold(field), q) {
				return true
			}
		}
		return false
	})
}

func searchFields(t tutorial.Tutorial) []string {
	fields := make([]string, 0, len(t.Tags)+2)
	fields = append(fields, t.Title, t.Description)
	return append(fields, t.Tags...)
}

// SortByPublishDate returns a copy ordered by publish date, most recent first.
// Tutorials with equal dates keep their relative order.
func SortByPublishDate(tutorials []tutorial.Tutorial) []tutorial.Tutorial {
	sorted := slices.Clone(tutorials)
	if sorted == nil {
		sorted = []tutorial.Tutorial{}
	}
	slices.SortStableFunc(sorted, func(a, b tutorial.Tutorial) int {
		return b.PublishDate.Compare(a.PublishDate)
	})
	return sorted
}

// Paginate returns page pageNumber (1-indexed) of size pageSize: the window
// [(pageNumber-1)*pageSize, pageNumber*pageSize) clamped to the slice bounds.
// Pages past the end yield an empty slice. Callers clamp pageNumber with
// ClampPage first.
func Paginate(tutorials []tutorial.Tutorial, pageNumber, pageSize int) []tutorial.Tutorial {
	// Bounds are checked before multiplying so huge page numbers cannot overflow.
	if pageSize <= 0 || pageNumber < 1 || pageNumber > TotalPages(len(tutorials), pageSize) {
		return []tutorial.Tutorial{}
	}
	start := (pageNumber - 1) * pageSize
	end := min(start+pageSize, len(tutorials))
	if start >= end {
		return []tutorial.Tutorial{}
	}
	return slices.Clone(tutorials[start:end])
}

// TotalPages returns the number of pages needed for total items, at least 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total-1)/pageSize + 1
}

// ClampPage bounds page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	return max(1, min(page, totalPages))
}
