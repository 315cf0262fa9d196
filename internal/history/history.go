package history

import (
	"encoding/json"
	"time"

	"github.com/hpungsan/tutorhub/internal/logger"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

const (
	// Key is the store key holding the reading history.
	Key = "reading_history"

	// MaxItems is the number of most recent entries kept.
	MaxItems = 20
)

// History is a most-recent-first, deduplicated, capped log of read tutorials.
type History struct {
	store ProgressStore
	now   func() time.Time
}

// New creates a History over store. A nil store behaves like NopStore.
func New(store ProgressStore) *History {
	if store == nil {
		store = NopStore{}
	}
	return &History{store: store, now: time.Now}
}

// Items returns the stored history, most recent first.
// Missing or unreadable data reads as an empty history.
func (h *History) Items() []tutorial.ReadingHistoryItem {
	return decodeItems(h.store.Get(Key))
}

func decodeItems(raw string, ok bool) []tutorial.ReadingHistoryItem {
	if !ok || raw == "" {
		return []tutorial.ReadingHistoryItem{}
	}

	var items []tutorial.ReadingHistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.L().Warn().Err(err).Msg("discarding unreadable reading history")
		return []tutorial.ReadingHistoryItem{}
	}
	if items == nil {
		items = []tutorial.ReadingHistoryItem{}
	}
	return items
}

// Add records t as read now. Re-reading moves the entry to the front.
func (h *History) Add(t tutorial.Tutorial) []tutorial.ReadingHistoryItem {
	return h.AddAt(t, h.now())
}

// AddAt records t as read at the given time. The read and write of the
// stored list happen in one store update, so concurrent adds for the same
// scope are not lost on stores that implement Updater.
func (h *History) AddAt(t tutorial.Tutorial, at time.Time) []tutorial.ReadingHistoryItem {
	var result []tutorial.ReadingHistoryItem
	Update(h.store, Key, func(current string, ok bool) (string, bool) {
		existing := decodeItems(current, ok)

		items := make([]tutorial.ReadingHistoryItem, 0, min(len(existing)+1, MaxItems))
		items = append(items, tutorial.ReadingHistoryItem{Tutorial: t.WithoutBody(), ReadAt: at.UTC()})
		for _, item := range existing {
			if len(items) == MaxItems {
				break
			}
			if item.Tutorial.ID == t.ID {
				continue
			}
			items = append(items, item)
		}

		data, err := json.Marshal(items)
		if err != nil {
			logger.L().Warn().Err(err).Msg("reading history encode failed")
			result = existing
			return "", false
		}
		result = items
		return string(data), true
	})
	return result
}

// Clear removes all history entries.
func (h *History) Clear() {
	h.store.Remove(Key)
}
