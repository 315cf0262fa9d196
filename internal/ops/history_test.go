package ops

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tutorhub/internal/config"
	"github.com/hpungsan/tutorhub/internal/db"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/history"
)

func TestReadingHistoryWorkflow(t *testing.T) {
	database := seededDB(t)
	ctx := context.Background()
	store := history.Scoped(db.NewKVStore(database), "visitor-1")

	base := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"go-001", "py-001", "go-001"} {
		f, err := Fetch(ctx, database, FetchInput{ID: id})
		require.NoError(t, err)
		RecordRead(store, f.Tutorial, base.Add(time.Duration(i)*time.Minute))
	}

	out := History(store)
	require.Equal(t, 2, out.Count)
	assert.Equal(t, "go-001", out.Items[0].Tutorial.ID)
	assert.Equal(t, "py-001", out.Items[1].Tutorial.ID)
	assert.Empty(t, out.Items[0].Tutorial.Body)
	assert.Equal(t, base.Add(2*time.Minute), out.Items[0].ReadAt)

	// Another visitor sees nothing
	assert.Zero(t, History(history.Scoped(db.NewKVStore(database), "visitor-2")).Count)

	cleared := ClearHistory(store)
	assert.Zero(t, cleared.Count)
	assert.NotNil(t, cleared.Items)
	assert.Zero(t, History(store).Count)
}

func TestProgressOps(t *testing.T) {
	store := history.NewMemoryStore()

	got, err := GetProgress(store, "go-001")
	require.NoError(t, err)
	assert.False(t, got.Found)

	set, err := SetProgress(store, "go-001", 140)
	require.NoError(t, err)
	assert.Equal(t, 100, set.Percent)

	got, err = GetProgress(store, "go-001")
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, 100, got.Percent)

	_, err = SetProgress(store, " ", 10)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestOpenProgressStore(t *testing.T) {
	database := seededDB(t)
	baseDir := t.TempDir()

	tests := []struct {
		backend string
		check   func(t *testing.T, s history.ProgressStore)
	}{
		{config.BackendSQLite, func(t *testing.T, s history.ProgressStore) {
			assert.IsType(t, &db.KVStore{}, s)
		}},
		{config.BackendFile, func(t *testing.T, s history.ProgressStore) {
			assert.IsType(t, &history.FileStore{}, s)
			s.Set("k", "v")
			assert.FileExists(t, filepath.Join(baseDir, ProgressFileName))
		}},
		{config.BackendMemory, func(t *testing.T, s history.ProgressStore) {
			assert.IsType(t, &history.MemoryStore{}, s)
		}},
		{config.BackendNone, func(t *testing.T, s history.ProgressStore) {
			s.Set("k", "v")
			_, ok := s.Get("k")
			assert.False(t, ok)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.ProgressBackend = tt.backend
			tt.check(t, OpenProgressStore(cfg, database, baseDir))
		})
	}
}
