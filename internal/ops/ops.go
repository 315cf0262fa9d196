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

// Listing limits
const (
	DefaultPageSize      = 12
	MaxPageSize          = 100
	DefaultRelatedLimit  = 3
	MaxRelatedLimit      = 20
	DefaultFeaturedLimit = 6
	DefaultSearchLimit   = 20
	MaxSearchLimit       = 100
)

// Pagination contains page metadata for listing operations.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// NewPagination clamps page into [1, TotalPages] for total items split into
// pages of pageSize.
func NewPagination(total, page, pageSize int) Pagination {
	totalPages := listing.TotalPages(total, pageSize)
	page = listing.ClampPage(page, totalPages)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Address identifies a single tutorial.
type Address struct {
	ByID     bool
	ID       string
	Category string
	Slug     string
}

// ValidateAddress validates addressing parameters.
// Exactly one mode must be used: id, or category + slug.
func ValidateAddress(id, category, slug string) (*Address, error) {
	id = strings.TrimSpace(id)
	category = strings.TrimSpace(category)
	slug = strings.TrimSpace(slug)

	hasID := id != ""
	hasPath := category != "" || slug != ""

	if hasID && hasPath {
		return nil, errors.NewInvalidRequest("specify either id or category+slug, not both")
	}
	if hasID {
		return &Address{ByID: true, ID: id}, nil
	}
	if category == "" || slug == "" {
		return nil, errors.NewInvalidRequest("must specify either id or both category and slug")
	}
	return &Address{Category: category, Slug: strings.ToLower(slug)}, nil
}

// getTutorial loads the addressed tutorial, including its body.
func getTutorial(ctx context.Context, database *sql.DB, addr *Address) (*tutorial.Tutorial, error) {
	if addr.ByID {
		return db.GetTutorialByID(ctx, database, addr.ID)
	}
	return db.GetTutorial(ctx, database, addr.Category, addr.Slug)
}

// parseDifficultyFilter accepts an empty filter or one of the known difficulties.
func parseDifficultyFilter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, ok := tutorial.ParseDifficulty(s)
	if !ok {
		return "", errors.NewInvalidRequest("difficulty must be one of: Beginner, Intermediate, Advanced")
	}
	return string(d), nil
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
