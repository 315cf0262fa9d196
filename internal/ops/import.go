package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tutorhub/internal/catalog"
	"github.com/hpungsan/tutorhub/internal/config"
	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/logger"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required, .yaml or .yml
}

// ImportOutput contains the result of the Import and Seed operations.
type ImportOutput struct {
	Categories int  `json:"categories"`
	Tutorials  int  `json:"tutorials"`
	Skipped    bool `json:"skipped,omitempty"`

	// PerCategory maps each imported category slug to its tutorial count.
	PerCategory map[string]int `json:"per_category,omitempty"`
}

// Import replaces the stored catalog with the one at input.Path.
// The file is fully parsed and validated before anything is written; the swap
// itself is a single transaction.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openCatalogFile(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dir, err := catalog.Parse(file)
	if err != nil {
		return nil, err
	}

	out, err := replaceCatalog(ctx, database, dir)
	if err != nil {
		return nil, err
	}
	logger.L().Info().
		Str("path", input.Path).
		Int("categories", out.Categories).
		Int("tutorials", out.Tutorials).
		Msg("catalog imported")
	return out, nil
}

// Seed loads the built-in catalog when the store holds no tutorials.
func Seed(ctx context.Context, database *sql.DB) (*ImportOutput, error) {
	n, err := db.CountTutorials(ctx, database)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return &ImportOutput{Tutorials: n, Skipped: true}, nil
	}

	dir, err := catalog.Default()
	if err != nil {
		return nil, err
	}

	out, err := replaceCatalog(ctx, database, dir)
	if err != nil {
		return nil, err
	}
	logger.L().Debug().Int("tutorials", out.Tutorials).Msg("seeded built-in catalog")
	return out, nil
}

func replaceCatalog(ctx context.Context, database *sql.DB, dir *catalog.Directory) (*ImportOutput, error) {
	if err := db.ReplaceCatalog(ctx, database, dir.Categories, dir.Tutorials); err != nil {
		return nil, err
	}
	perCategory := make(map[string]int, len(dir.Categories))
	for _, c := range dir.WithCounts() {
		perCategory[c.Slug] = c.TutorialCount
	}
	return &ImportOutput{
		Categories:  len(dir.Categories),
		Tutorials:   len(dir.Tutorials),
		PerCategory: perCategory,
	}, nil
}
