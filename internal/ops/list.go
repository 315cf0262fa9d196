package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/listing"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Category   string // optional, case-insensitive
	Difficulty string // optional, one of Beginner/Intermediate/Advanced
	Query      string // optional search over title, description and tags
	Page       int    // 1-indexed, clamped into range
	PageSize   int    // default: 12, max: 100
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []tutorial.Tutorial `json:"items"`
	Pagination Pagination          `json:"pagination"`
	Sort       string              `json:"sort"`
}

// List filters the directory, sorts it newest first and returns one page.
// Bodies are omitted from listed items.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	difficulty, err := parseDifficultyFilter(input.Difficulty)
	if err != nil {
		return nil, err
	}
	pageSize := clampLimit(input.PageSize, DefaultPageSize, MaxPageSize)

	items, err := db.ListTutorials(ctx, database, false)
	if err != nil {
		return nil, err
	}

	if category := strings.TrimSpace(input.Category); category != "" {
		items = listing.FilterByCategory(items, category)
	}
	if difficulty != "" {
		items = listing.FilterByDifficulty(items, difficulty)
	}
	if strings.TrimSpace(input.Query) != "" {
		items = listing.Search(items, input.Query)
	}
	items = listing.SortByPublishDate(items)

	pagination := NewPagination(len(items), input.Page, pageSize)

	return &ListOutput{
		Items:      listing.Paginate(items, pagination.Page, pageSize),
		Pagination: pagination,
		Sort:       "publish_date_desc",
	}, nil
}

// Featured returns up to limit featured tutorials, newest first.
func Featured(ctx context.Context, database *sql.DB, limit int) ([]tutorial.Tutorial, error) {
	limit = clampLimit(limit, DefaultFeaturedLimit, MaxPageSize)

	items, err := db.ListTutorials(ctx, database, false)
	if err != nil {
		return nil, err
	}
	featured := listing.SortByPublishDate(listing.Featured(items))
	return listing.Paginate(featured, 1, limit), nil
}
