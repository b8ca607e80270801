package labeling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/logger"
	"github.com/labelprint/backend/internal/infrastructure/printing"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// SheetService saves, previews and prints A4 production sheets
type SheetService struct {
	settings   SettingsStore
	repo       labeling.ProductionSheetRepository
	renderer   SheetRenderer
	store      printing.ArtifactStore
	dispatcher Dispatcher
	now        Clock
	logger     *zap.Logger
}

// NewSheetService creates a new SheetService
func NewSheetService(
	settings SettingsStore,
	repo labeling.ProductionSheetRepository,
	renderer SheetRenderer,
	store printing.ArtifactStore,
	dispatcher Dispatcher,
	logger *zap.Logger,
) *SheetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetService{
		settings:   settings,
		repo:       repo,
		renderer:   renderer,
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source
func (s *SheetService) WithClock(now Clock) *SheetService {
	s.now = now
	return s
}

// PrintSheet upserts the record by (date, shift) and prints it. The record
// stays saved when printing fails.
func (s *SheetService) PrintSheet(ctx context.Context, req SheetRequest) (*SheetResult, error) {
	now := s.now()
	rec := req.ProductionSheetRecord
	if err := rec.Normalize(now); err != nil {
		return nil, err
	}
	settings := s.settings.Get()
	copies, err := resolveCopies(req.Copies, settings.DefaultBulkCopies)
	if err != nil {
		return nil, err
	}
	printer := resolvePrinter(req.Printer, settings.DefaultPrinter)
	log := logger.L(ctx, s.logger).With(
		zap.String("date", rec.Date),
		zap.String("shift", rec.Shift.String()))

	rec.SavedAt = now
	replaced, err := s.repo.Save(ctx, rec)
	if err != nil {
		log.Error("failed to save production record", zap.Error(err))
		return nil, fmt.Errorf("failed to save production record: %w", err)
	}

	artifact, err := s.renderer.RenderDocument(&rec)
	if err != nil {
		log.Error("production sheet render failed", zap.Error(err))
		return nil, fmt.Errorf("failed to render production sheet: %w", err)
	}
	path, err := s.store.Save(ctx, artifact)
	if err != nil {
		log.Error("failed to store production sheet", zap.Error(err))
		return nil, fmt.Errorf("failed to store production sheet: %w", err)
	}
	defer s.store.Remove(path)

	job := &spooler.Job{
		Path:     path,
		Printer:  printer,
		Copies:   copies,
		WidthCm:  artifact.WidthCm,
		HeightCm: artifact.HeightCm,
	}
	if err := s.dispatcher.PrintDocument(ctx, job); err != nil {
		log.Error("production sheet print failed",
			zap.String("printer", printerDisplay(printer)),
			zap.Error(err))
		return nil, labeling.ErrPrintFailed
	}

	log.Info("production sheet printed",
		zap.Bool("replaced", replaced),
		zap.String("printer", printerDisplay(printer)),
		zap.Int("copies", copies))
	return &SheetResult{
		Date:     rec.Date,
		Shift:    rec.Shift.String(),
		Printer:  printerDisplay(printer),
		Copies:   copies,
		Replaced: replaced,
		SavedAt:  rec.SavedAt,
	}, nil
}

// PreviewSheet renders the sheet without saving or printing it
func (s *SheetService) PreviewSheet(ctx context.Context, req SheetRequest) (*printing.Artifact, error) {
	rec := req.ProductionSheetRecord
	if err := rec.Normalize(s.now()); err != nil {
		return nil, err
	}
	artifact, err := s.renderer.RenderDocument(&rec)
	if err != nil {
		logger.L(ctx, s.logger).Error("production sheet preview failed", zap.Error(err))
		return nil, fmt.Errorf("failed to render production sheet preview: %w", err)
	}
	return artifact, nil
}

// ListRecords returns every saved production sheet in insertion order
func (s *SheetService) ListRecords(ctx context.Context) ([]labeling.ProductionSheetRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list production records: %w", err)
	}
	return records, nil
}

// GetRecord returns the production sheet saved for date and shift
func (s *SheetService) GetRecord(ctx context.Context, date, shift string) (*labeling.ProductionSheetRecord, error) {
	key, err := sheetKey(date, shift)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, key)
}

// DeleteRecord removes the production sheet saved for date and shift
func (s *SheetService) DeleteRecord(ctx context.Context, date, shift string) error {
	key, err := sheetKey(date, shift)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	logger.L(ctx, s.logger).Info("production record deleted",
		zap.String("date", key.Date),
		zap.String("shift", key.Shift.String()))
	return nil
}

func sheetKey(date, shift string) (labeling.SheetKey, error) {
	s, err := labeling.ParseShift(shift)
	if err != nil {
		return labeling.SheetKey{}, err
	}
	return labeling.SheetKey{Date: strings.TrimSpace(date), Shift: s}, nil
}
