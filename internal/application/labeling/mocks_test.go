package labeling_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	domain "github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/printing"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Get() domain.LabelSizeConfig {
	args := m.Called()
	return args.Get(0).(domain.LabelSizeConfig)
}

func (m *MockSettingsStore) Update(patch domain.LabelSizePatch) (domain.LabelSizeConfig, error) {
	args := m.Called(patch)
	return args.Get(0).(domain.LabelSizeConfig), args.Error(1)
}

type MockLabelRenderer struct {
	mock.Mock
}

func (m *MockLabelRenderer) Render(kind printing.ArtifactKind, spec printing.LabelSpec, content printing.LabelContent) (*printing.Artifact, error) {
	args := m.Called(kind, spec, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.Artifact), args.Error(1)
}

type MockSheetRenderer struct {
	mock.Mock
}

func (m *MockSheetRenderer) RenderDocument(rec *domain.ProductionSheetRecord) (*printing.Artifact, error) {
	args := m.Called(rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.Artifact), args.Error(1)
}

type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Save(ctx context.Context, artifact *printing.Artifact) (string, error) {
	args := m.Called(ctx, artifact)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Remove(path string) {
	m.Called(path)
}

func (m *MockArtifactStore) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *MockArtifactStore) Dir() string {
	return m.Called().String(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) PrintLabel(ctx context.Context, job *spooler.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockDispatcher) PrintDocument(ctx context.Context, job *spooler.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockDispatcher) Printers(ctx context.Context, refresh bool) []spooler.Printer {
	args := m.Called(ctx, refresh)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]spooler.Printer)
}

func (m *MockDispatcher) LabelBackend() string {
	return m.Called().String(0)
}

func (m *MockDispatcher) DocumentBackend() string {
	return m.Called().String(0)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) FindByLabelID(ctx context.Context, labelID string) (*domain.HistoryEntry, error) {
	args := m.Called(ctx, labelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockSheetRepository struct {
	mock.Mock
}

func (m *MockSheetRepository) Save(ctx context.Context, rec domain.ProductionSheetRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockSheetRepository) List(ctx context.Context) ([]domain.ProductionSheetRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductionSheetRecord), args.Error(1)
}

func (m *MockSheetRepository) Get(ctx context.Context, key domain.SheetKey) (*domain.ProductionSheetRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionSheetRecord), args.Error(1)
}

func (m *MockSheetRepository) Delete(ctx context.Context, key domain.SheetKey) error {
	return m.Called(ctx, key).Error(0)
}
