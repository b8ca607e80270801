package labeling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/domain/shared"
	"github.com/labelprint/backend/internal/infrastructure/logger"
	"github.com/labelprint/backend/internal/infrastructure/printing"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// PrintStatusPrinted is the status reported for a label found in the history
const PrintStatusPrinted = "printed"

// LabelService prints compact weight labels and keeps the print history
type LabelService struct {
	settings   SettingsStore
	renderer   LabelRenderer
	store      printing.ArtifactStore
	dispatcher Dispatcher
	history    labeling.PrintHistoryRepository
	format     printing.ArtifactKind
	now        Clock
	logger     *zap.Logger
}

// NewLabelService creates a new LabelService. format selects the artifact
// handed to the label backend; an invalid value falls back to PDF.
func NewLabelService(
	settings SettingsStore,
	renderer LabelRenderer,
	store printing.ArtifactStore,
	dispatcher Dispatcher,
	history labeling.PrintHistoryRepository,
	format printing.ArtifactKind,
	logger *zap.Logger,
) *LabelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !format.IsValid() {
		format = printing.ArtifactPDF
	}
	return &LabelService{
		settings:   settings,
		renderer:   renderer,
		store:      store,
		dispatcher: dispatcher,
		history:    history,
		format:     format,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source
func (s *LabelService) WithClock(now Clock) *LabelService {
	s.now = now
	return s
}

// Format returns the artifact kind sent to the label backend
func (s *LabelService) Format() printing.ArtifactKind {
	return s.format
}

// PrintLabel validates, renders and prints one label
func (s *LabelService) PrintLabel(ctx context.Context, req LabelRequest) (*LabelResult, error) {
	settings := s.settings.Get()
	rec, err := buildLabelRecord(req, settings, s.now(), -1)
	if err != nil {
		return nil, err
	}
	return s.print(ctx, rec, settings)
}

// PrintBatch prints every label of the request in order. A failing label
// does not stop the rest.
func (s *LabelService) PrintBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if len(req.Labels) == 0 {
		return nil, labeling.ErrNoLabels
	}

	settings := s.settings.Get()
	now := s.now()
	result := &BatchResult{
		Results: make([]BatchItemResult, 0, len(req.Labels)),
		Summary: BatchSummary{Total: len(req.Labels)},
	}
	for i, item := range req.Labels {
		entry := BatchItemResult{Index: i}
		printed, err := s.printBatchItem(ctx, item, settings, now, i)
		if err != nil {
			entry.Error, entry.Message = errorCode(err)
			result.Summary.Failed++
		} else {
			entry.Success = true
			entry.LabelID = printed.LabelID
			entry.NetWeight = printed.NetWeight
			result.Summary.Success++
		}
		result.Results = append(result.Results, entry)
	}

	s.logger.Info("batch printed",
		zap.Int("total", result.Summary.Total),
		zap.Int("success", result.Summary.Success),
		zap.Int("failed", result.Summary.Failed))
	return result, nil
}

func (s *LabelService) printBatchItem(ctx context.Context, req LabelRequest, settings labeling.LabelSizeConfig,
	now time.Time, index int) (*LabelResult, error) {
	rec, err := buildLabelRecord(req, settings, now, index)
	if err != nil {
		return nil, err
	}
	return s.print(ctx, rec, settings)
}

// PreviewLabel renders a label without printing it. An empty kind uses the
// service format.
func (s *LabelService) PreviewLabel(ctx context.Context, req LabelRequest, kind printing.ArtifactKind) (*printing.Artifact, error) {
	settings := s.settings.Get()
	rec, err := buildLabelRecord(req, settings, s.now(), -1)
	if err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		kind = s.format
	}
	artifact, err := s.renderer.Render(kind, printing.LabelSpecFrom(settings), printing.LabelContentFrom(rec))
	if err != nil {
		logger.L(ctx, s.logger).Error("label preview failed", zap.Error(err))
		return nil, fmt.Errorf("failed to render label preview: %w", err)
	}
	return artifact, nil
}

// ListHistory returns the print history, newest first
func (s *LabelService) ListHistory(ctx context.Context) ([]labeling.HistoryEntry, error) {
	entries, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list print history: %w", err)
	}
	return entries, nil
}

// ClearHistory removes every history entry
func (s *LabelService) ClearHistory(ctx context.Context) error {
	if err := s.history.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear print history: %w", err)
	}
	logger.L(ctx, s.logger).Info("print history cleared")
	return nil
}

// PrintStatus looks a label up in the print history
func (s *LabelService) PrintStatus(ctx context.Context, labelID string) (*PrintStatusResult, error) {
	entry, err := s.history.FindByLabelID(ctx, strings.TrimSpace(labelID))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Label not found in print history")
		}
		return nil, fmt.Errorf("failed to look up label: %w", err)
	}
	return &PrintStatusResult{
		LabelID:   entry.LabelID,
		Status:    PrintStatusPrinted,
		PrintTime: entry.Timestamp,
		NetWeight: entry.NetWeight,
		Printer:   printerDisplay(entry.Printer),
		Copies:    entry.Copies,
	}, nil
}

// print renders the record, dispatches it and records the history entry.
// The scratch artifact is removed whatever the outcome.
func (s *LabelService) print(ctx context.Context, rec *labeling.LabelRecord, settings labeling.LabelSizeConfig) (*LabelResult, error) {
	ctx, log := logger.WithLabelID(ctx, logger.L(ctx, s.logger), rec.LabelID)

	artifact, err := s.renderer.Render(s.format, printing.LabelSpecFrom(settings), printing.LabelContentFrom(rec))
	if err != nil {
		log.Error("label render failed", zap.Error(err))
		return nil, fmt.Errorf("failed to render label: %w", err)
	}
	path, err := s.store.Save(ctx, artifact)
	if err != nil {
		log.Error("failed to store label artifact", zap.Error(err))
		return nil, fmt.Errorf("failed to store label: %w", err)
	}
	defer s.store.Remove(path)

	job := &spooler.Job{
		Path:     path,
		Printer:  rec.Printer,
		Copies:   rec.Copies,
		WidthCm:  artifact.WidthCm,
		HeightCm: artifact.HeightCm,
	}
	if err := s.dispatcher.PrintLabel(ctx, job); err != nil {
		log.Error("label print failed",
			zap.String("printer", printerDisplay(rec.Printer)),
			zap.Error(err))
		return nil, labeling.ErrPrintFailed
	}

	printedAt := s.now()
	if err := s.history.Append(ctx, labeling.NewHistoryEntry(rec, printedAt)); err != nil {
		log.Warn("failed to record print history", zap.Error(err))
	}

	log.Info("label printed",
		zap.String("net_weight", rec.NetWeightDisplay()),
		zap.String("printer", printerDisplay(rec.Printer)),
		zap.Int("copies", rec.Copies))
	return newLabelResult(rec, printedAt), nil
}

func newLabelResult(rec *labeling.LabelRecord, printedAt time.Time) *LabelResult {
	return &LabelResult{
		LabelID:      rec.LabelID,
		TotalWeight:  rec.Weight.Total.StringFixed(1),
		PalletWeight: rec.Weight.Pallet.StringFixed(1),
		ExtraWeight:  rec.Weight.Extra.StringFixed(1),
		NetWeight:    rec.NetWeightDisplay(),
		Weight:       rec.NetWeightDisplay(),
		Barcode:      rec.BarcodePayload(),
		ProductName:  rec.ProductName,
		Date:         rec.Date,
		Printer:      printerDisplay(rec.Printer),
		Copies:       rec.Copies,
		PrintTime:    printedAt,
	}
}

// buildLabelRecord turns a raw request into a validated label record. index
// is the position within a batch, or -1 for a single label.
func buildLabelRecord(req LabelRequest, settings labeling.LabelSizeConfig, now time.Time, index int) (*labeling.LabelRecord, error) {
	totalRaw := req.TotalWeight.raw()
	switch {
	case !req.TotalWeight.present() && !req.Weight.present():
		if req.PalletWeight.present() {
			return nil, labeling.ErrTotalWeightRequired
		}
		return nil, labeling.ErrWeightRequired
	case !req.TotalWeight.present():
		totalRaw = req.Weight.raw()
	case !req.PalletWeight.present():
		return nil, labeling.ErrPalletWeightRequired
	}

	total, err := labeling.ParseWeight(totalRaw)
	if err != nil {
		return nil, err
	}
	pallet, err := labeling.ParseWeight(req.PalletWeight.raw())
	if err != nil {
		return nil, err
	}
	extra := settings.ExtraWeightDefault
	if req.ExtraWeight.present() {
		if extra, err = labeling.ParseWeight(req.ExtraWeight.raw()); err != nil {
			return nil, err
		}
	}
	weight, err := labeling.ComputeNetWeight(total, pallet, extra)
	if err != nil {
		return nil, err
	}

	copies, err := resolveCopies(req.Copies, settings.DefaultLabelCopies)
	if err != nil {
		return nil, err
	}

	rec := &labeling.LabelRecord{
		LabelID:     strings.TrimSpace(req.LabelID),
		Weight:      weight,
		Date:        strings.TrimSpace(req.Date),
		ProductName: strings.TrimSpace(req.ProductName),
		Printer:     resolvePrinter(req.Printer, settings.DefaultPrinter),
		Copies:      copies,
	}
	if rec.Date == "" {
		rec.Date = now.Format(labeling.DateLayout)
	}
	if rec.ProductName == "" {
		rec.ProductName = labeling.DefaultProductName
		if index >= 0 {
			rec.ProductName = fmt.Sprintf("%s %d", labeling.DefaultProductName, index+1)
		}
	}
	if rec.LabelID == "" {
		rec.LabelID = labeling.GenerateLabelID(now, index)
	}
	return rec, nil
}

// maxCopiesLength bounds the raw copy count text; exponent forms are refused
const maxCopiesLength = 16

// resolveCopies parses a requested copy count, falling back to def
func resolveCopies(v *FlexValue, def int) (int, error) {
	if !v.present() {
		return def, labeling.ValidateCopies(def)
	}
	raw := v.raw()
	if len(raw) > maxCopiesLength || strings.ContainsAny(raw, "eE") {
		return 0, labeling.ErrInvalidCopies
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() || !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(labeling.MaxCopies)) {
		return 0, labeling.ErrInvalidCopies
	}
	n := int(d.IntPart())
	return n, labeling.ValidateCopies(n)
}

// resolvePrinter picks the requested printer or the configured default.
// The empty name selects the OS default printer.
func resolvePrinter(requested *string, configured string) string {
	if requested != nil {
		return labeling.NormalizePrinter(*requested)
	}
	return labeling.NormalizePrinter(configured)
}

// errorCode extracts the public error code and message of err
func errorCode(err error) (string, string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code, domainErr.Message
	}
	return labeling.CodeInternalError, err.Error()
}
