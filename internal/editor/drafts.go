package editor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/cache"
	"github.com/inkpress/inkpress/internal/model"
)

type DraftID string

// Draft is a server-side autosave of an in-progress block document. Drafts
// are throwaway state: losing them on restart is acceptable, so the default
// store is memory-backed.
type Draft struct {
	ID        DraftID
	Title     string
	Blocks    []model.Block
	UpdatedAt time.Time
}

type DraftStore interface {
	Create() (*Draft, error)
	Save(id DraftID, title string, blocks []model.Block) error
	Get(id DraftID) (*Draft, error)
	Delete(id DraftID) error
}

type MemoryDraftStore struct {
	drafts *cache.Cache[DraftID, *Draft]
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts: cache.NewCache[DraftID, *Draft](),
	}
}

func (m *MemoryDraftStore) Create() (*Draft, error) {
	draft := &Draft{
		ID:        DraftID(uuid.New().String()),
		UpdatedAt: time.Now().UTC(),
	}
	m.drafts.Set(draft.ID, draft)
	return draft, nil
}

func (m *MemoryDraftStore) Save(id DraftID, title string, blocks []model.Block) error {
	copied := make([]model.Block, len(blocks))
	copy(copied, blocks)

	m.drafts.Set(id, &Draft{
		ID:        id,
		Title:     title,
		Blocks:    copied,
		UpdatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *MemoryDraftStore) Get(id DraftID) (*Draft, error) {
	if draft, ok := m.drafts.Get(id); ok {
		return draft, nil
	}
	return nil, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
}

func (m *MemoryDraftStore) Delete(id DraftID) error {
	m.drafts.Delete(id)
	return nil
}
