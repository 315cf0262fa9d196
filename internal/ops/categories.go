package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/listing"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// CategoriesOutput contains the result of the Categories operation.
type CategoriesOutput struct {
	Items []tutorial.Category `json:"items"`
	Total int                 `json:"total"`
}

// Categories returns every category in catalog order with live tutorial counts.
func Categories(ctx context.Context, database *sql.DB) (*CategoriesOutput, error) {
	categories, err := db.ListCategories(ctx, database)
	if err != nil {
		return nil, err
	}
	tutorials, err := db.ListTutorials(ctx, database, false)
	if err != nil {
		return nil, err
	}

	items := listing.CountByCategory(categories, tutorials)
	return &CategoriesOutput{Items: items, Total: len(items)}, nil
}

// CategoryBySlug returns the category with the given slug, ignoring case.
func CategoryBySlug(ctx context.Context, database *sql.DB, slug string) (*tutorial.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.NewInvalidRequest("category slug is required")
	}

	out, err := Categories(ctx, database)
	if err != nil {
		return nil, err
	}

	want := tutorial.Normalize(slug)
	for _, c := range out.Items {
		if tutorial.Normalize(c.Slug) == want {
			return &c, nil
		}
	}
	return nil, errors.NewNotFound(slug)
}
