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

// ProductionSheetFileRepository keeps production sheets in a JSON array file
// (production_records.json). The file is re-read on every operation so
// manual edits are picked up, and every write replaces it atomically.
type ProductionSheetFileRepository struct {
	file   *storage.JSONFile
	logger *zap.Logger
	mu     sync.Mutex
}

// NewProductionSheetFileRepository creates the repository for path
func NewProductionSheetFileRepository(path string, logger *zap.Logger) *ProductionSheetFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionSheetFileRepository{file: storage.NewJSONFile(path), logger: logger}
}

// Save upserts by (date, shift)
func (r *ProductionSheetFileRepository) Save(_ context.Context, rec labeling.ProductionSheetRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return false, err
	}
	records, replaced := labeling.UpsertSheet(records, rec)
	if err := r.file.Save(records); err != nil {
		return false, fmt.Errorf("failed to save production records: %w", err)
	}
	r.logger.Info("production record saved",
		zap.String("date", rec.Date),
		zap.String("shift", rec.Shift.String()),
		zap.Bool("replaced", replaced))
	return replaced, nil
}

// List returns records in insertion order
func (r *ProductionSheetFileRepository) List(_ context.Context) ([]labeling.ProductionSheetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Get returns the record for key
func (r *ProductionSheetFileRepository) Get(_ context.Context, key labeling.SheetKey) (*labeling.ProductionSheetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Key() == key {
			return &records[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// Delete removes the record for key
func (r *ProductionSheetFileRepository) Delete(_ context.Context, key labeling.SheetKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	records, removed := labeling.RemoveSheet(records, key)
	if !removed {
		return shared.ErrNotFound
	}
	if err := r.file.Save(records); err != nil {
		return fmt.Errorf("failed to save production records: %w", err)
	}
	return nil
}

func (r *ProductionSheetFileRepository) load() ([]labeling.ProductionSheetRecord, error) {
	records := []labeling.ProductionSheetRecord{}
	if _, err := r.file.Load(&records); err != nil {
		return nil, fmt.Errorf("failed to load production records: %w", err)
	}
	return records, nil
}

var _ labeling.ProductionSheetRepository = (*ProductionSheetFileRepository)(nil)
