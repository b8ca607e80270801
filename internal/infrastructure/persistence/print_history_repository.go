package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/domain/shared"
)

// PrintHistoryModel is the GORM model for print history entries
type PrintHistoryModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	LabelID      string    `gorm:"type:varchar(64);index;not null"`
	PrintedAt    time.Time `gorm:"index;not null"`
	Date         string    `gorm:"type:varchar(10)"`
	TotalWeight  string    `gorm:"type:varchar(32)"`
	PalletWeight string    `gorm:"type:varchar(32)"`
	ExtraWeight  string    `gorm:"type:varchar(32)"`
	NetWeight    string    `gorm:"type:varchar(32)"`
	Printer      string    `gorm:"type:varchar(255)"`
	Copies       int       `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for the model
func (PrintHistoryModel) TableName() string {
	return "print_history"
}

// ToEntity converts the model to a domain entry
func (m *PrintHistoryModel) ToEntity() labeling.HistoryEntry {
	return labeling.HistoryEntry{
		ID:           m.ID,
		LabelID:      m.LabelID,
		Timestamp:    m.PrintedAt,
		Date:         m.Date,
		TotalWeight:  m.TotalWeight,
		PalletWeight: m.PalletWeight,
		ExtraWeight:  m.ExtraWeight,
		NetWeight:    m.NetWeight,
		Printer:      m.Printer,
		Copies:       m.Copies,
	}
}

// PrintHistoryModelFromEntity creates a model from a domain entry
func PrintHistoryModelFromEntity(e labeling.HistoryEntry) *PrintHistoryModel {
	return &PrintHistoryModel{
		ID:           e.ID,
		LabelID:      e.LabelID,
		PrintedAt:    e.Timestamp,
		Date:         e.Date,
		TotalWeight:  e.TotalWeight,
		PalletWeight: e.PalletWeight,
		ExtraWeight:  e.ExtraWeight,
		NetWeight:    e.NetWeight,
		Printer:      e.Printer,
		Copies:       e.Copies,
	}
}

// GormPrintHistoryRepository stores the print history in sqlite or postgres
type GormPrintHistoryRepository struct {
	db *gorm.DB
}

// NewGormPrintHistoryRepository creates a new repository
func NewGormPrintHistoryRepository(db *gorm.DB) *GormPrintHistoryRepository {
	return &GormPrintHistoryRepository{db: db}
}

// Append inserts the entry and deletes everything older than the newest
// HistoryCapacity entries in the same transaction
func (r *GormPrintHistoryRepository) Append(ctx context.Context, entry labeling.HistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(PrintHistoryModelFromEntity(entry)).Error; err != nil {
			return err
		}
		keep := tx.Model(&PrintHistoryModel{}).
			Select("id").
			Order("printed_at DESC").
			Order("created_at DESC").
			Limit(labeling.HistoryCapacity)
		return tx.Where("id NOT IN (?)", keep).Delete(&PrintHistoryModel{}).Error
	})
}

// List returns entries newest first
func (r *GormPrintHistoryRepository) List(ctx context.Context) ([]labeling.HistoryEntry, error) {
	var models []PrintHistoryModel
	err := r.db.WithContext(ctx).
		Order("printed_at DESC").
		Order("created_at DESC").
		Limit(labeling.HistoryCapacity).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entries := make([]labeling.HistoryEntry, len(models))
	for i := range models {
		entries[i] = models[i].ToEntity()
	}
	return entries, nil
}

// FindByLabelID returns the newest entry for labelID
func (r *GormPrintHistoryRepository) FindByLabelID(ctx context.Context, labelID string) (*labeling.HistoryEntry, error) {
	var model PrintHistoryModel
	err := r.db.WithContext(ctx).
		Where("label_id = ?", labelID).
		Order("printed_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e := model.ToEntity()
	return &e, nil
}

// Clear removes every entry
func (r *GormPrintHistoryRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&PrintHistoryModel{}).Error
}

var _ labeling.PrintHistoryRepository = (*GormPrintHistoryRepository)(nil)
