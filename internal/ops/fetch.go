package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/listing"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID           string
	Category     string
	Slug         string
	RelatedLimit int   // default: 3, max: 20
	IncludeBody  *bool // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	tutorial.Tutorial // embedded (copy, not pointer)

	// CategoryInfo is the owning category with its live tutorial count
	CategoryInfo tutorial.Category `json:"category_info"`

	Related []tutorial.Tutorial `json:"related"`
	Path    string              `json:"path"`
}

// Fetch retrieves a tutorial by ID or by category and slug, together with
// the tutorials sharing the most tags with it.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Category, input.Slug)
	if err != nil {
		return nil, err
	}

	t, err := getTutorial(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	all, err := db.ListTutorials(ctx, database, false)
	if err != nil {
		return nil, err
	}
	categories, err := db.ListCategories(ctx, database)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		Tutorial: *t,
		Related:  listing.RelatedByTags(all, *t, clampLimit(input.RelatedLimit, DefaultRelatedLimit, MaxRelatedLimit)),
		Path:     t.Path(),
	}
	for _, c := range listing.CountByCategory(categories, all) {
		if c.Slug == t.Category {
			output.CategoryInfo = c
			break
		}
	}

	if input.IncludeBody != nil && !*input.IncludeBody {
		output.Body = ""
	}

	return output, nil
}

// RelatedInput contains parameters for the Related operation.
type RelatedInput struct {
	ID       string
	Category string
	Slug     string
	Limit    int // default: 3, max: 20
}

// RelatedItem is a related tutorial with its tag overlap.
type RelatedItem struct {
	tutorial.Tutorial
	SharedTags int `json:"shared_tags"`
}

// RelatedOutput contains the result of the Related operation.
type RelatedOutput struct {
	Subject string        `json:"subject"`
	Items   []RelatedItem `json:"items"`
}

// Related returns the tutorials sharing the most tags with the addressed one,
// most shared tags first.
func Related(ctx context.Context, database *sql.DB, input RelatedInput) (*RelatedOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Category, input.Slug)
	if err != nil {
		return nil, err
	}

	t, err := getTutorial(ctx, database, addr)
	if err != nil {
		return nil, err
	}

	all, err := db.ListTutorials(ctx, database, false)
	if err != nil {
		return nil, err
	}

	related := listing.RelatedByTags(all, *t, clampLimit(input.Limit, DefaultRelatedLimit, MaxRelatedLimit))
	items := make([]RelatedItem, len(related))
	for i, r := range related {
		items[i] = RelatedItem{Tutorial: r, SharedTags: listing.SharedTags(*t, r)}
	}

	return &RelatedOutput{
		Subject: t.Path(),
		Items:   items,
	}, nil
}
