package listing

import (
	"slices"

	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// RelatedByTags returns up to limit tutorials that share at least one tag with
// subject, most shared tags first. The subject itself is excluded. Tutorials
// with the same overlap keep their input order.
func RelatedByTags(tutorials []tutorial.Tutorial, subject tutorial.Tutorial, limit int) []tutorial.Tutorial {
	if limit <= 0 {
		return []tutorial.Tutorial{}
	}

	subjectTags := tagSet(subject.Tags)
	if len(subjectTags) == 0 {
		return []tutorial.Tutorial{}
	}

	type scored struct {
		t      tutorial.Tutorial
		shared int
	}

	candidates := make([]scored, 0, len(tutorials))
	for _, t := range tutorials {
		if isSame(t, subject) {
			continue
		}
		shared := 0
		for tag := range tagSet(t.Tags) {
			if subjectTags[tag] {
				shared++
			}
		}
		if shared > 0 {
			candidates = append(candidates, scored{t: t, shared: shared})
		}
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		return b.shared - a.shared
	})

	n := min(limit, len(candidates))
	result := make([]tutorial.Tutorial, n)
	for i := range n {
		result[i] = candidates[i].t
	}
	return result
}

// SharedTags counts the distinct tags a and b have in common.
func SharedTags(a, b tutorial.Tutorial) int {
	bs := tagSet(b.Tags)
	shared := 0
	for tag := range tagSet(a.Tags) {
		if bs[tag] {
			shared++
		}
	}
	return shared
}

// tagSet normalizes tags into a set, dropping blanks.
func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if n := tutorial.Normalize(tag); n != "" {
			set[n] = true
		}
	}
	return set
}

// isSame reports whether t is subject. IDs are compared when subject has one,
// otherwise category and slug.
func isSame(t, subject tutorial.Tutorial) bool {
	if subject.ID != "" {
		return t.ID == subject.ID
	}
	return tutorial.Normalize(t.Category) == tutorial.Normalize(subject.Category) && t.Slug == subject.Slug
}
