package ops

import (
	"strings"
	"time"

	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/history"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// HistoryOutput contains a visitor's reading history, most recent first.
type HistoryOutput struct {
	Items []tutorial.ReadingHistoryItem `json:"items"`
	Count int                           `json:"count"`
}

func historyOutput(items []tutorial.ReadingHistoryItem) *HistoryOutput {
	return &HistoryOutput{Items: items, Count: len(items)}
}

// RecordRead adds t to the reading history in store as read at the given time.
func RecordRead(store history.ProgressStore, t tutorial.Tutorial, at time.Time) *HistoryOutput {
	return historyOutput(history.New(store).AddAt(t, at))
}

// History returns the reading history in store.
func History(store history.ProgressStore) *HistoryOutput {
	return historyOutput(history.New(store).Items())
}

// ClearHistory removes every reading history entry in store.
func ClearHistory(store history.ProgressStore) *HistoryOutput {
	history.New(store).Clear()
	return historyOutput([]tutorial.ReadingHistoryItem{})
}

// ProgressOutput reports the reading progress bookmarked for a tutorial.
type ProgressOutput struct {
	TutorialID string `json:"tutorial_id"`
	Percent    int    `json:"percent"`
	Found      bool   `json:"found"`
}

// SetProgress bookmarks percent (clamped to 0..100) for tutorialID.
func SetProgress(store history.ProgressStore, tutorialID string, percent int) (*ProgressOutput, error) {
	tutorialID = strings.TrimSpace(tutorialID)
	if tutorialID == "" {
		return nil, errors.NewInvalidRequest("tutorial id is required")
	}
	stored := history.NewProgress(store).Set(tutorialID, percent)
	return &ProgressOutput{TutorialID: tutorialID, Percent: stored, Found: true}, nil
}

// GetProgress returns the bookmark for tutorialID. A missing bookmark is not
// an error; Found reports whether one exists.
func GetProgress(store history.ProgressStore, tutorialID string) (*ProgressOutput, error) {
	tutorialID = strings.TrimSpace(tutorialID)
	if tutorialID == "" {
		return nil, errors.NewInvalidRequest("tutorial id is required")
	}
	percent, ok := history.NewProgress(store).Get(tutorialID)
	return &ProgressOutput{TutorialID: tutorialID, Percent: percent, Found: ok}, nil
}
