package labeling

import "context"

// PrintHistoryRepository stores the bounded print history
type PrintHistoryRepository interface {
	// Append adds an entry and evicts entries past HistoryCapacity
	Append(ctx context.Context, entry HistoryEntry) error
	// List returns entries newest first
	List(ctx context.Context) ([]HistoryEntry, error)
	// FindByLabelID returns shared.ErrNotFound when no entry matches
	FindByLabelID(ctx context.Context, labelID string) (*HistoryEntry, error)
	// Clear removes every entry
	Clear(ctx context.Context) error
}

// ProductionSheetRepository stores production sheets keyed by (date, shift)
type ProductionSheetRepository interface {
	// Save upserts by key; replaced is true when a record was overwritten
	Save(ctx context.Context, rec ProductionSheetRecord) (replaced bool, err error)
	// List returns records in insertion order
	List(ctx context.Context) ([]ProductionSheetRecord, error)
	// Get returns shared.ErrNotFound when no record matches
	Get(ctx context.Context, key SheetKey) (*ProductionSheetRecord, error)
	// Delete returns shared.ErrNotFound when no record matches
	Delete(ctx context.Context, key SheetKey) error
}
