package labeling

import (
	"context"
	"time"

	"github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/config"
	"github.com/labelprint/backend/internal/infrastructure/printing"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// SettingsStore holds the process-wide label settings
type SettingsStore interface {
	Get() labeling.LabelSizeConfig
	Update(patch labeling.LabelSizePatch) (labeling.LabelSizeConfig, error)
}

// LabelRenderer draws a compact label
type LabelRenderer interface {
	Render(kind printing.ArtifactKind, spec printing.LabelSpec, content printing.LabelContent) (*printing.Artifact, error)
}

// SheetRenderer draws a production sheet
type SheetRenderer interface {
	RenderDocument(rec *labeling.ProductionSheetRecord) (*printing.Artifact, error)
}

// Dispatcher sends artifacts to printers
type Dispatcher interface {
	PrintLabel(ctx context.Context, job *spooler.Job) error
	PrintDocument(ctx context.Context, job *spooler.Job) error
	Printers(ctx context.Context, refresh bool) []spooler.Printer
	LabelBackend() string
	DocumentBackend() string
}

// Clock returns the current time
type Clock func() time.Time

var (
	_ SettingsStore = (*config.LabelSizeStore)(nil)
	_ LabelRenderer = (*printing.LabelRenderer)(nil)
	_ SheetRenderer = (*printing.SheetRenderer)(nil)
	_ Dispatcher    = (*spooler.Dispatcher)(nil)
)
