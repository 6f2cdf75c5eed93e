package service

import (
	"context"
	"sync"

	"github.com/Rogue-Bear-Innovations/bookmarks-api/internal/models"
)

// Memory keeps bookmarks in process. Useful for local runs and tests.
type Memory struct {
	mu   sync.RWMutex
	seq  uint64
	rows []models.Bookmark
}

func NewMemory() *Memory {
	return &Memory{
		rows: make([]models.Bookmark, 0),
	}
}

func (m *Memory) List(_ context.Context) ([]models.Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Bookmark, len(m.rows))
	for i := range m.rows {
		out[i] = clone(m.rows[i])
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id uint64) (models.Bookmark, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i == -1 {
		return models.Bookmark{}, false, nil
	}
	return clone(m.rows[i]), true, nil
}

func (m *Memory) Create(_ context.Context, fields models.BookmarkFields) (models.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	b := clone(models.Bookmark{
		ID:          m.seq,
		Title:       fields.Title,
		URL:         fields.URL,
		Description: fields.Description,
		Rating:      fields.Rating,
	})
	m.rows = append(m.rows, b)
	return clone(b), nil
}

func (m *Memory) Update(_ context.Context, id uint64, patch models.BookmarkPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i == -1 {
		return 0, nil
	}
	patch.Apply(&m.rows[i])
	return 1, nil
}

func (m *Memory) Delete(_ context.Context, id uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i == -1 {
		return 0, nil
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return 1, nil
}

// indexOf expects m.mu to be held.
func (m *Memory) indexOf(id uint64) int {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(b models.Bookmark) models.Bookmark {
	out := b
	if b.Description != nil {
		d := *b.Description
		out.Description = &d
	}
	if b.Rating != nil {
		r := *b.Rating
		out.Rating = &r
	}
	return out
}
