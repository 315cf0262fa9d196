package history

import (
	"strconv"
)

// ProgressKeyPrefix namespaces per-tutorial reading progress keys.
const ProgressKeyPrefix = "reading_progress:"

// Progress bookmarks how far a visitor got through each tutorial, as a
// percentage in [0, 100].
type Progress struct {
	store ProgressStore
}

// NewProgress creates a Progress over store. A nil store behaves like NopStore.
func NewProgress(store ProgressStore) *Progress {
	if store == nil {
		store = NopStore{}
	}
	return &Progress{store: store}
}

// Set stores percent for tutorialID, clamped to [0, 100].
func (p *Progress) Set(tutorialID string, percent int) int {
	percent = max(0, min(percent, 100))
	p.store.Set(ProgressKeyPrefix+tutorialID, strconv.Itoa(percent))
	return percent
}

// Get returns the stored percentage for tutorialID and whether one exists.
func (p *Progress) Get(tutorialID string) (int, bool) {
	raw, ok := p.store.Get(ProgressKeyPrefix + tutorialID)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return max(0, min(v, 100)), true
}

// Clear forgets the bookmark for tutorialID.
func (p *Progress) Clear(tutorialID string) {
	p.store.Remove(ProgressKeyPrefix + tutorialID)
}
