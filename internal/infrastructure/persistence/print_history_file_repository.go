package persistence

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/domain/shared"
	"github.com/labelprint/backend/internal/infrastructure/storage"
)

// PrintHistoryFileRepository keeps the bounded print history in memory and
// mirrors it to a JSON file after each change
type PrintHistoryFileRepository struct {
	file    *storage.JSONFile
	logger  *zap.Logger
	mu      sync.RWMutex
	history *labeling.PrintHistory
}

// NewPrintHistoryFileRepository loads the history from path. A missing file
// starts an empty history; a corrupt one is logged and replaced on the next
// append.
func NewPrintHistoryFileRepository(path string, logger *zap.Logger) *PrintHistoryFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &PrintHistoryFileRepository{file: storage.NewJSONFile(path), logger: logger}

	var entries []labeling.HistoryEntry
	if _, err := r.file.Load(&entries); err != nil {
		logger.Warn("print history unreadable, starting empty", zap.String("path", path), zap.Error(err))
		entries = nil
	}
	r.history = labeling.NewPrintHistory(entries)
	return r
}

// Append adds the entry at the front, evicting past capacity
func (r *PrintHistoryFileRepository) Append(_ context.Context, entry labeling.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := labeling.NewPrintHistory(r.history.Entries())
	next.Add(entry)
	if err := r.file.Save(next.Entries()); err != nil {
		return fmt.Errorf("failed to save print history: %w", err)
	}
	r.history = next
	return nil
}

// List returns entries newest first
func (r *PrintHistoryFileRepository) List(_ context.Context) ([]labeling.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.history.Entries(), nil
}

// FindByLabelID returns the newest entry for labelID
func (r *PrintHistoryFileRepository) FindByLabelID(_ context.Context, labelID string) (*labeling.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.history.Find(labelID)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

// Clear removes every entry
func (r *PrintHistoryFileRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.file.Save([]labeling.HistoryEntry{}); err != nil {
		return fmt.Errorf("failed to clear print history: %w", err)
	}
	r.history = labeling.NewPrintHistory(nil)
	return nil
}

var _ labeling.PrintHistoryRepository = (*PrintHistoryFileRepository)(nil)
