package ops

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tutorhub/internal/errors"
)

func TestSearch(t *testing.T) {
	database := seededDB(t)

	out, err := Search(context.Background(), database, SearchInput{Query: "docker"})
	require.NoError(t, err)

	assert.Equal(t, "docker", out.Query)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "docker-002", out.Items[0].ID)
	assert.Equal(t, 2, out.Pagination.Total)
	assert.Contains(t, out.Items[1].Snippet, "<b>Docker</b>")
}

func TestSearch_Filters(t *testing.T) {
	database := seededDB(t)

	out, err := Search(context.Background(), database, SearchInput{Query: "basics", Category: "python"})
	require.NoError(t, err)
	assert.Equal(t, []string{"py-002", "py-001"}, []string{out.Items[0].ID, out.Items[1].ID})

	// py-002 matches on a tag only, so the snippet lists the tags
	assert.Contains(t, out.Items[0].Snippet, "<b>basics</b>")
}

func TestSearch_Validation(t *testing.T) {
	database := seededDB(t)
	ctx := context.Background()

	_, err := Search(ctx, database, SearchInput{Query: "  "})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Search(ctx, database, SearchInput{Query: strings.Repeat("a", MaxQueryLength+1)})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Search(ctx, database, SearchInput{Query: "go", Difficulty: "hard"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestEscapeSnippetHTML(t *testing.T) {
	in := "<script>" + openMarker + "go" + closeMarker + " & more"
	want := "&lt;script&gt;<b>go</b> &amp; more"
	if got := escapeSnippetHTML(in); got != want {
		t.Errorf("escapeSnippetHTML = %q, want %q", got, want)
	}
}

func TestTruncateSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short unchanged", "hello", 10, "hello"},
		{"zero max", "hello", 0, "..."},
		{"closes open bold", "<b>hello world again</b>", 14, "<b>hello</b>..."},
		{"drops partial entity", "ab &amp; cd", 5, "ab ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateSnippet(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateSnippet(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
