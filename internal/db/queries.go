package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const tutorialColumns = `
	id, title, description, category, slug, author, read_time,
	difficulty, publish_date, tags_json, featured, body`

// ReplaceCatalog atomically swaps the stored catalog for the given categories
// and tutorials. Slice order becomes catalog order.
func ReplaceCatalog(ctx context.Context, db *sql.DB, categories []tutorial.Category, tutorials []tutorial.Tutorial) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tutorials"); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM categories"); err != nil {
		return errors.NewInternal(err)
	}

	for i, c := range categories {
		if err := insertCategory(ctx, tx, c, i); err != nil {
			return err
		}
	}
	for i, t := range tutorials {
		if err := insertTutorial(ctx, tx, t, i); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func insertCategory(ctx context.Context, q queryer, c tutorial.Category, position int) error {
	query := `
		INSERT INTO categories (id, name, slug, slug_norm, description, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, c.ID, c.Name, c.Slug, tutorial.Normalize(c.Slug), c.Description, position)
	if err != nil {
		if isIDConflict(err, "categories") {
			return duplicateIDError("category", c.ID)
		}
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateSlug("", c.Slug)
		}
		return errors.NewInternal(err)
	}
	return nil
}

func insertTutorial(ctx context.Context, q queryer, t tutorial.Tutorial, position int) error {
	tagsJSON, err := encodeTags(t.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO tutorials (` + tutorialColumns + `, category_norm, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Category, t.Slug, t.Author, t.ReadTime,
		string(t.Difficulty), t.PublishDate.Format("2006-01-02"), tagsJSON, boolToInt(t.Featured), t.Body,
		tutorial.Normalize(t.Category), position,
	)
	if err != nil {
		if isIDConflict(err, "tutorials") {
			return duplicateIDError("tutorial", t.ID)
		}
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateSlug(t.Category, t.Slug)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ListTutorials returns every stored tutorial in catalog order.
// Bodies are included only when withBody is true.
func ListTutorials(ctx context.Context, db *sql.DB, withBody bool) ([]tutorial.Tutorial, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+tutorialColumns+" FROM tutorials ORDER BY position, id")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	tutorials := []tutorial.Tutorial{}
	for rows.Next() {
		t, err := scanTutorial(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if !withBody {
			t.Body = ""
		}
		tutorials = append(tutorials, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tutorials, nil
}

// GetTutorial retrieves a tutorial by category (case-insensitive) and slug.
func GetTutorial(ctx context.Context, db *sql.DB, category, slug string) (*tutorial.Tutorial, error) {
	query := "SELECT " + tutorialColumns + " FROM tutorials WHERE category_norm = ? AND slug = ?"

	row := db.QueryRowContext(ctx, query, tutorial.Normalize(category), slug)
	t, err := scanTutorial(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(category + "/" + slug)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// GetTutorialByID retrieves a tutorial by its identifier.
func GetTutorialByID(ctx context.Context, db *sql.DB, id string) (*tutorial.Tutorial, error) {
	row := db.QueryRowContext(ctx, "SELECT "+tutorialColumns+" FROM tutorials WHERE id = ?", id)
	t, err := scanTutorial(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// CountTutorials returns the number of stored tutorials.
func CountTutorials(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tutorials").Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// ListCategories returns every stored category in catalog order.
// TutorialCount is left at zero; counts are derived from the live directory.
func ListCategories(ctx context.Context, db *sql.DB) ([]tutorial.Category, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, slug, description FROM categories ORDER BY position, id")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	categories := []tutorial.Category{}
	for rows.Next() {
		var c tutorial.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, errors.NewInternal(err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return categories, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTutorial scans a single row into a Tutorial.
func scanTutorial(row rowScanner) (*tutorial.Tutorial, error) {
	var (
		t           tutorial.Tutorial
		difficulty  string
		publishDate string
		tagsJSON    sql.NullString
		featured    int
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Slug, &t.Author, &t.ReadTime,
		&difficulty, &publishDate, &tagsJSON, &featured, &t.Body,
	)
	if err != nil {
		return nil, err
	}

	t.Difficulty = tutorial.Difficulty(difficulty)
	t.Featured = featured != 0

	if publishDate != "" {
		d, err := tutorial.ParseDate(publishDate)
		if err != nil {
			return nil, err
		}
		t.PublishDate = d
	}

	t.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &t.Tags); err != nil {
			return nil, err
		}
	}

	return &t, nil
}

// encodeTags converts tags to a nullable JSON column value.
func encodeTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isIDConflict reports whether err is a primary key violation on table.id
// rather than a slug index violation.
func isIDConflict(err error, table string) bool {
	return isUniqueConstraintError(err) && strings.Contains(err.Error(), "failed: "+table+".id")
}

func duplicateIDError(kind, id string) error {
	return errors.NewInvalidCatalog(fmt.Sprintf("%s id %q already used", kind, id), map[string]any{"id": id})
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
