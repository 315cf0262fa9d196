package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// seededDB returns a database loaded with the built-in catalog.
func seededDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := Seed(context.Background(), database); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return database
}

func tutorialIDs(ts []tutorial.Tutorial) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                  string
		total, page, pageSize int
		want                  Pagination
	}{
		{"first of two", 14, 1, 12, Pagination{Page: 1, PageSize: 12, Total: 14, TotalPages: 2, HasNext: true}},
		{"second of two", 14, 2, 12, Pagination{Page: 2, PageSize: 12, Total: 14, TotalPages: 2, HasPrev: true}},
		{"beyond last clamps", 14, 9, 12, Pagination{Page: 2, PageSize: 12, Total: 14, TotalPages: 2, HasPrev: true}},
		{"zero clamps to first", 14, 0, 12, Pagination{Page: 1, PageSize: 12, Total: 14, TotalPages: 2, HasNext: true}},
		{"empty has one page", 0, 3, 12, Pagination{Page: 1, PageSize: 12, Total: 0, TotalPages: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.total, tt.page, tt.pageSize)
			if got != tt.want {
				t.Errorf("NewPagination(%d, %d, %d) = %+v, want %+v", tt.total, tt.page, tt.pageSize, got, tt.want)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		category string
		slug     string
		wantErr  bool
		wantByID bool
	}{
		{"by id", "go-001", "", "", false, true},
		{"by path", "", "go", "getting-started", false, false},
		{"id and path", "go-001", "go", "getting-started", true, false},
		{"slug only", "", "", "getting-started", true, false},
		{"category only", "", "go", "", true, false},
		{"nothing", "  ", "", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ValidateAddress(tt.id, tt.category, tt.slug)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidRequest) {
					t.Errorf("ValidateAddress error = %v, want INVALID_REQUEST", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAddress failed: %v", err)
			}
			if addr.ByID != tt.wantByID {
				t.Errorf("ByID = %v, want %v", addr.ByID, tt.wantByID)
			}
		})
	}
}

func TestValidateAddress_LowercasesSlug(t *testing.T) {
	addr, err := ValidateAddress("", "Go", "Getting-Started")
	if err != nil {
		t.Fatalf("ValidateAddress failed: %v", err)
	}
	if addr.Slug != "getting-started" {
		t.Errorf("Slug = %q, want getting-started", addr.Slug)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit, want int
	}{
		{0, 12},
		{-4, 12},
		{5, 5},
		{500, 100},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.limit, 12, 100); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}
