package listing

import "github.com/hpungsan/tutorhub/internal/tutorial"

// CountByCategory returns a copy of categories with TutorialCount set to the
// number of tutorials whose category matches the category slug, ignoring case.
func CountByCategory(categories []tutorial.Category, tutorials []tutorial.Tutorial) []tutorial.Category {
	counts := make(map[string]int, len(categories))
	for _, t := range tutorials {
		counts[fold(t.Category)]++
	}

	result := make([]tutorial.Category, len(categories))
	for i, c := range categories {
		c.TutorialCount = counts[fold(c.Slug)]
		result[i] = c
	}
	return result
}
