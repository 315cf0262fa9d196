package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tutorhub/internal/tutorial"
)

func TestRelatedByTags(t *testing.T) {
	s := sample()

	// Subject "Goroutines" has tags go, concurrency.
	got := RelatedByTags(s, s[1], 5)
	// 1 shares "go"; 4 shares "Concurrency" (case-insensitive). Equal overlap keeps input order.
	assert.Equal(t, []string{"1", "4"}, ids(got))
}

func TestRelatedByTags_RankedByOverlap(t *testing.T) {
	subject := tutorial.Tutorial{ID: "s", Tags: []string{"a", "b", "c"}}
	s := []tutorial.Tutorial{
		{ID: "one", Tags: []string{"a"}},
		subject,
		{ID: "three", Tags: []string{"a", "b", "c"}},
		{ID: "none", Tags: []string{"z"}},
		{ID: "two", Tags: []string{"b", "c", "x"}},
		{ID: "one-b", Tags: []string{"c"}},
	}

	got := RelatedByTags(s, subject, 10)
	assert.Equal(t, []string{"three", "two", "one", "one-b"}, ids(got))

	got = RelatedByTags(s, subject, 2)
	assert.Equal(t, []string{"three", "two"}, ids(got))
}

func TestRelatedByTags_Properties(t *testing.T) {
	s := sample()
	for _, subject := range s {
		for _, k := range []int{0, 1, 2, 10} {
			got := RelatedByTags(s, subject, k)
			require.NotNil(t, got)
			assert.LessOrEqual(t, len(got), k)

			prev := -1
			for _, r := range got {
				assert.NotEqual(t, subject.ID, r.ID, "subject returned")
				shared := SharedTags(subject, r)
				assert.GreaterOrEqual(t, shared, 1)
				if prev != -1 {
					assert.LessOrEqual(t, shared, prev, "not sorted by overlap")
				}
				prev = shared
			}
		}
	}
}

func TestRelatedByTags_EmptyTags(t *testing.T) {
	s := sample()
	untagged := s[4]
	assert.Empty(t, RelatedByTags(s, untagged, 3))

	// An untagged candidate never matches either.
	for _, r := range RelatedByTags(s, s[0], 10) {
		assert.NotEqual(t, "5", r.ID)
	}
}

func TestRelatedByTags_DuplicateSubjectTagsCountOnce(t *testing.T) {
	subject := tutorial.Tutorial{ID: "s", Tags: []string{"go", "Go", " go "}}
	s := []tutorial.Tutorial{
		{ID: "a", Tags: []string{"go"}},
		{ID: "b", Tags: []string{"go", "web"}},
	}

	got := RelatedByTags(s, subject, 5)
	assert.Equal(t, []string{"a", "b"}, ids(got))
	assert.Equal(t, 1, SharedTags(subject, s[1]))
}

func TestRelatedByTags_SubjectWithoutID(t *testing.T) {
	subject := tutorial.Tutorial{Category: "go", Slug: "x", Tags: []string{"go"}}
	s := []tutorial.Tutorial{
		{Category: "Go", Slug: "x", Tags: []string{"go"}},
		{Category: "go", Slug: "y", Tags: []string{"go"}},
	}

	got := RelatedByTags(s, subject, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].Slug)
}
