package labeling

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/logger"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// StatusRunning is the only status a live server reports
const StatusRunning = "running"

// SystemService reports server status, printers and label settings
type SystemService struct {
	settings   SettingsStore
	dispatcher Dispatcher
	version    string
	now        Clock
	logger     *zap.Logger
}

// NewSystemService creates a new SystemService
func NewSystemService(settings SettingsStore, dispatcher Dispatcher, version string, logger *zap.Logger) *SystemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemService{
		settings:   settings,
		dispatcher: dispatcher,
		version:    version,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source
func (s *SystemService) WithClock(now Clock) *SystemService {
	s.now = now
	return s
}

// Status reports the running server
func (s *SystemService) Status(ctx context.Context) *StatusResult {
	return &StatusResult{
		Status:          StatusRunning,
		ServerTime:      s.now(),
		Version:         s.version,
		LabelSize:       s.settings.Get().SizeLabel(),
		LabelBackend:    s.dispatcher.LabelBackend(),
		DocumentBackend: s.dispatcher.DocumentBackend(),
	}
}

// Printers lists installed printers. refresh bypasses the printer cache.
func (s *SystemService) Printers(ctx context.Context, refresh bool) []spooler.Printer {
	return s.dispatcher.Printers(ctx, refresh)
}

// Settings returns the current label settings
func (s *SystemService) Settings() labeling.LabelSizeConfig {
	return s.settings.Get()
}

// UpdateSettings applies a partial update and persists it
func (s *SystemService) UpdateSettings(ctx context.Context, patch labeling.LabelSizePatch) (labeling.LabelSizeConfig, error) {
	cfg, err := s.settings.Update(patch)
	if err != nil {
		return labeling.LabelSizeConfig{}, err
	}
	logger.L(ctx, s.logger).Info("label settings updated",
		zap.String("label_size", cfg.SizeLabel()),
		zap.String("default_printer", printerDisplay(cfg.DefaultPrinter)))
	return cfg, nil
}
