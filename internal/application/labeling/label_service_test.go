package labeling_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/labelprint/backend/internal/application/labeling"
	domain "github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/domain/shared"
	"github.com/labelprint/backend/internal/infrastructure/printing"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

var fixedNow = time.Date(2024, 3, 2, 14, 5, 9, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func flex(s string) *labeling.FlexValue { return labeling.NewFlexValue(s) }

func labelArtifact() *printing.Artifact {
	return &printing.Artifact{Kind: printing.ArtifactPDF, Data: []byte("%PDF-1.3"), WidthCm: 10, HeightCm: 5}
}

type labelFixture struct {
	settings   *MockSettingsStore
	renderer   *MockLabelRenderer
	store      *MockArtifactStore
	dispatcher *MockDispatcher
	history    *MockHistoryRepository
	service    *labeling.LabelService
}

func newLabelFixture(format printing.ArtifactKind, cfg domain.LabelSizeConfig, logger *zap.Logger) *labelFixture {
	f := &labelFixture{
		settings:   new(MockSettingsStore),
		renderer:   new(MockLabelRenderer),
		store:      new(MockArtifactStore),
		dispatcher: new(MockDispatcher),
		history:    new(MockHistoryRepository),
	}
	f.settings.On("Get").Return(cfg)
	f.service = labeling.NewLabelService(f.settings, f.renderer, f.store, f.dispatcher, f.history, format, logger).
		WithClock(fixedClock)
	return f
}

// expectPrint wires the happy path for any number of labels
func (f *labelFixture) expectPrint(path string) {
	f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(labelArtifact(), nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return(path, nil)
	f.store.On("Remove", path).Return()
	f.dispatcher.On("PrintLabel", mock.Anything, mock.Anything).Return(nil)
	f.history.On("Append", mock.Anything, mock.Anything).Return(nil)
}

func TestFlexValue_UnmarshalJSON(t *testing.T) {
	var req labeling.LabelRequest
	body := `{"total_weight": 15, "pallet_weight": "2.0", "extra_weight": null, "copies": 2, "printer": "default"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.NotNil(t, req.TotalWeight)
	assert.Equal(t, labeling.FlexValue("15"), *req.TotalWeight)
	assert.Equal(t, labeling.FlexValue("2.0"), *req.PalletWeight)
	assert.Nil(t, req.ExtraWeight)
	assert.Equal(t, labeling.FlexValue("2"), *req.Copies)
	assert.Equal(t, "default", *req.Printer)
}

func TestLabelService_PrintLabel(t *testing.T) {
	f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)

	artifact := labelArtifact()
	f.renderer.On("Render", printing.ArtifactPDF,
		printing.LabelSpec{WidthCm: 10, HeightCm: 5, FontName: "Arial", FontSize: 48},
		mock.MatchedBy(func(c printing.LabelContent) bool {
			return c.NetWeight == "10.0" && c.BarcodePayload == "000100" && c.ProductName == "Product"
		})).Return(artifact, nil)
	f.store.On("Save", mock.Anything, artifact).Return("/scratch/label.pdf", nil)
	f.store.On("Remove", "/scratch/label.pdf").Return()
	f.dispatcher.On("PrintLabel", mock.Anything, &spooler.Job{
		Path: "/scratch/label.pdf", Printer: "", Copies: 1, WidthCm: 10, HeightCm: 5,
	}).Return(nil)
	f.history.On("Append", mock.Anything, mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.LabelID == "ID20240302140509" && e.NetWeight == "10.0" && e.Copies == 1
	})).Return(nil)

	result, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
		TotalWeight:  flex("15.0"),
		PalletWeight: flex("2.0"),
		ExtraWeight:  flex("3.0"),
	})
	require.NoError(t, err)

	assert.Equal(t, "ID20240302140509", result.LabelID)
	assert.Equal(t, "15.0", result.TotalWeight)
	assert.Equal(t, "2.0", result.PalletWeight)
	assert.Equal(t, "3.0", result.ExtraWeight)
	assert.Equal(t, "10.0", result.NetWeight)
	assert.Equal(t, "10.0", result.Weight)
	assert.Equal(t, "000100", result.Barcode)
	assert.Equal(t, "2024-03-02", result.Date)
	assert.Equal(t, "default", result.Printer)
	assert.Equal(t, fixedNow, result.PrintTime)

	f.renderer.AssertExpectations(t)
	f.store.AssertExpectations(t)
	f.dispatcher.AssertExpectations(t)
	f.history.AssertExpectations(t)
}

func TestLabelService_PrintLabel_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  labeling.LabelRequest
		err  error
	}{
		{"nothing sent", labeling.LabelRequest{}, domain.ErrWeightRequired},
		{"blank total", labeling.LabelRequest{TotalWeight: flex("  ")}, domain.ErrWeightRequired},
		{"pallet only", labeling.LabelRequest{PalletWeight: flex("2")}, domain.ErrTotalWeightRequired},
		{"total only", labeling.LabelRequest{TotalWeight: flex("10")}, domain.ErrPalletWeightRequired},
		{"net not positive", labeling.LabelRequest{TotalWeight: flex("5.0"), PalletWeight: flex("5.0")}, domain.ErrInvalidWeight},
		{"not numeric", labeling.LabelRequest{TotalWeight: flex("abc"), PalletWeight: flex("1")}, domain.ErrInvalidWeightFormat},
		{"bad pallet format", labeling.LabelRequest{TotalWeight: flex("10"), PalletWeight: flex("x")}, domain.ErrInvalidWeightFormat},
		{"negative total", labeling.LabelRequest{TotalWeight: flex("-1"), PalletWeight: flex("0")}, domain.ErrInvalidTotal},
		{"negative extra", labeling.LabelRequest{TotalWeight: flex("10"), PalletWeight: flex("1"), ExtraWeight: flex("-1")}, domain.ErrInvalidExtra},
		{"zero copies", labeling.LabelRequest{TotalWeight: flex("10"), PalletWeight: flex("1"), Copies: flex("0")}, domain.ErrInvalidCopies},
		{"too many copies", labeling.LabelRequest{TotalWeight: flex("10"), PalletWeight: flex("1"), Copies: flex("101")}, domain.ErrInvalidCopies},
		{"fractional copies", labeling.LabelRequest{TotalWeight: flex("10"), PalletWeight: flex("1"), Copies: flex("1.5")}, domain.ErrInvalidCopies},
		{"exponent copies", labeling.LabelRequest{TotalWeight: flex("10"), PalletWeight: flex("1"), Copies: flex("1e10000000")}, domain.ErrInvalidCopies},
		{"exponent total", labeling.LabelRequest{TotalWeight: flex("1e10000000"), PalletWeight: flex("1")}, domain.ErrInvalidWeightFormat},
		{"exponent extra", labeling.LabelRequest{TotalWeight: flex("10"), PalletWeight: flex("1"), ExtraWeight: flex("1e-9999999")}, domain.ErrInvalidWeightFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)

			result, err := f.service.PrintLabel(context.Background(), tt.req)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.err)
			f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
			f.dispatcher.AssertNotCalled(t, "PrintLabel", mock.Anything, mock.Anything)
		})
	}
}

func TestLabelService_PrintLabel_Defaults(t *testing.T) {
	cfg := domain.DefaultLabelSizeConfig()
	cfg.ExtraWeightDefault = decimal.RequireFromString("0.5")
	cfg.DefaultPrinter = "Zebra"
	cfg.DefaultLabelCopies = 3

	t.Run("settings fill missing fields", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, cfg, nil)
		f.expectPrint("/scratch/a.pdf")

		result, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
			TotalWeight:  flex("10"),
			PalletWeight: flex("1"),
		})
		require.NoError(t, err)
		assert.Equal(t, "8.5", result.NetWeight)
		assert.Equal(t, "0.5", result.ExtraWeight)
		assert.Equal(t, "Zebra", result.Printer)
		assert.Equal(t, 3, result.Copies)
		f.dispatcher.AssertCalled(t, "PrintLabel", mock.Anything, mock.MatchedBy(func(j *spooler.Job) bool {
			return j.Printer == "Zebra" && j.Copies == 3
		}))
	})

	t.Run("default alias overrides configured printer", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, cfg, nil)
		f.expectPrint("/scratch/b.pdf")

		alias := "기본 프린터"
		result, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
			TotalWeight:  flex("10"),
			PalletWeight: flex("1"),
			Printer:      &alias,
			Copies:       flex("2"),
		})
		require.NoError(t, err)
		assert.Equal(t, "default", result.Printer)
		assert.Equal(t, 2, result.Copies)
		f.dispatcher.AssertCalled(t, "PrintLabel", mock.Anything, mock.MatchedBy(func(j *spooler.Job) bool {
			return j.Printer == ""
		}))
	})

	t.Run("legacy weight is the total", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		f.expectPrint("/scratch/c.pdf")

		result, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
			Weight:      flex("12.3"),
			ProductName: " Flour ",
			Date:        "2024-01-01",
			LabelID:     "L-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "12.3", result.NetWeight)
		assert.Equal(t, "000123", result.Barcode)
		assert.Equal(t, "0.0", result.PalletWeight)
		assert.Equal(t, "Flour", result.ProductName)
		assert.Equal(t, "2024-01-01", result.Date)
		assert.Equal(t, "L-1", result.LabelID)
	})
}

func TestLabelService_PrintLabel_RasterFormat(t *testing.T) {
	f := newLabelFixture(printing.ArtifactPNG, domain.DefaultLabelSizeConfig(), nil)
	f.expectPrint("/scratch/label.png")

	_, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
		TotalWeight:  flex("15"),
		PalletWeight: flex("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, printing.ArtifactPNG, f.service.Format())
	f.renderer.AssertCalled(t, "Render", printing.ArtifactPNG, mock.Anything, mock.Anything)
}

func TestLabelService_PrintLabel_DispatchFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), zap.New(core))

	f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(labelArtifact(), nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return("/scratch/label.pdf", nil)
	f.store.On("Remove", "/scratch/label.pdf").Return()
	f.dispatcher.On("PrintLabel", mock.Anything, mock.Anything).Return(spooler.ErrAllStrategiesFailed)

	result, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
		TotalWeight:  flex("15"),
		PalletWeight: flex("2"),
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrPrintFailed)
	f.store.AssertCalled(t, "Remove", "/scratch/label.pdf")
	f.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)

	entries := logs.FilterMessage("label print failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ID20240302140509", entries[0].ContextMap()["label_id"])
}

func TestLabelService_PrintLabel_StoreFailure(t *testing.T) {
	f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
	f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(labelArtifact(), nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return("", errors.New("disk full"))

	_, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
		TotalWeight:  flex("15"),
		PalletWeight: flex("2"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	f.dispatcher.AssertNotCalled(t, "PrintLabel", mock.Anything, mock.Anything)
}

func TestLabelService_PrintLabel_HistoryFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), zap.New(core))
	f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(labelArtifact(), nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return("/scratch/label.pdf", nil)
	f.store.On("Remove", "/scratch/label.pdf").Return()
	f.dispatcher.On("PrintLabel", mock.Anything, mock.Anything).Return(nil)
	f.history.On("Append", mock.Anything, mock.Anything).Return(errors.New("read-only file system"))

	result, err := f.service.PrintLabel(context.Background(), labeling.LabelRequest{
		TotalWeight:  flex("15"),
		PalletWeight: flex("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "13.0", result.NetWeight)
	assert.Equal(t, 1, logs.FilterMessage("failed to record print history").Len())
}

func TestLabelService_PrintBatch(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		result, err := f.service.PrintBatch(context.Background(), labeling.BatchRequest{})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrNoLabels)
	})

	t.Run("partial success", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		f.expectPrint("/scratch/batch.pdf")

		result, err := f.service.PrintBatch(context.Background(), labeling.BatchRequest{Labels: []labeling.LabelRequest{
			{TotalWeight: flex("15"), PalletWeight: flex("2")},
			{TotalWeight: flex("15")},
			{TotalWeight: flex("20"), PalletWeight: flex("5"), ProductName: "Rice"},
		}})
		require.NoError(t, err)

		assert.Equal(t, labeling.BatchSummary{Total: 3, Success: 2, Failed: 1}, result.Summary)
		require.Len(t, result.Results, 3)

		assert.True(t, result.Results[0].Success)
		assert.Equal(t, "ID202403021405090", result.Results[0].LabelID)
		assert.Equal(t, "13.0", result.Results[0].NetWeight)

		assert.False(t, result.Results[1].Success)
		assert.Equal(t, 1, result.Results[1].Index)
		assert.Equal(t, domain.CodePalletWeightRequired, result.Results[1].Error)
		assert.NotEmpty(t, result.Results[1].Message)

		assert.Equal(t, "ID202403021405092", result.Results[2].LabelID)

		f.renderer.AssertCalled(t, "Render", mock.Anything, mock.Anything,
			mock.MatchedBy(func(c printing.LabelContent) bool { return c.ProductName == "Product 1" }))
		f.renderer.AssertCalled(t, "Render", mock.Anything, mock.Anything,
			mock.MatchedBy(func(c printing.LabelContent) bool { return c.ProductName == "Rice" }))
		f.dispatcher.AssertNumberOfCalls(t, "PrintLabel", 2)
	})

	t.Run("printer failure is reported per label", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(labelArtifact(), nil)
		f.store.On("Save", mock.Anything, mock.Anything).Return("/scratch/batch.pdf", nil)
		f.store.On("Remove", "/scratch/batch.pdf").Return()
		f.dispatcher.On("PrintLabel", mock.Anything, mock.Anything).Return(errors.New("offline"))

		result, err := f.service.PrintBatch(context.Background(), labeling.BatchRequest{Labels: []labeling.LabelRequest{
			{TotalWeight: flex("15"), PalletWeight: flex("2")},
		}})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Summary.Success)
		assert.Equal(t, domain.CodePrintFailed, result.Results[0].Error)
	})
}

func TestLabelService_PreviewLabel(t *testing.T) {
	f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
	png := &printing.Artifact{Kind: printing.ArtifactPNG, Data: []byte("\x89PNG")}
	f.renderer.On("Render", printing.ArtifactPNG, mock.Anything, mock.Anything).Return(png, nil)
	f.renderer.On("Render", printing.ArtifactPDF, mock.Anything, mock.Anything).Return(labelArtifact(), nil)

	req := labeling.LabelRequest{TotalWeight: flex("15"), PalletWeight: flex("2")}

	artifact, err := f.service.PreviewLabel(context.Background(), req, "")
	require.NoError(t, err)
	assert.Equal(t, printing.ArtifactPDF, artifact.Kind)

	artifact, err = f.service.PreviewLabel(context.Background(), req, printing.ArtifactPNG)
	require.NoError(t, err)
	assert.Equal(t, printing.ArtifactPNG, artifact.Kind)

	_, err = f.service.PreviewLabel(context.Background(), labeling.LabelRequest{}, "")
	assert.ErrorIs(t, err, domain.ErrWeightRequired)

	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.dispatcher.AssertNotCalled(t, "PrintLabel", mock.Anything, mock.Anything)
}

func TestLabelService_History(t *testing.T) {
	entry := domain.HistoryEntry{LabelID: "ID1", Timestamp: fixedNow, NetWeight: "10.0", Copies: 2}

	t.Run("list", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		f.history.On("List", mock.Anything).Return([]domain.HistoryEntry{entry}, nil)

		entries, err := f.service.ListHistory(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []domain.HistoryEntry{entry}, entries)
	})

	t.Run("clear", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		f.history.On("Clear", mock.Anything).Return(nil)
		require.NoError(t, f.service.ClearHistory(context.Background()))
		f.history.AssertExpectations(t)
	})

	t.Run("status found", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		f.history.On("FindByLabelID", mock.Anything, "ID1").Return(&entry, nil)

		status, err := f.service.PrintStatus(context.Background(), " ID1 ")
		require.NoError(t, err)
		assert.Equal(t, labeling.PrintStatusPrinted, status.Status)
		assert.Equal(t, fixedNow, status.PrintTime)
		assert.Equal(t, "default", status.Printer)
	})

	t.Run("status not found", func(t *testing.T) {
		f := newLabelFixture(printing.ArtifactPDF, domain.DefaultLabelSizeConfig(), nil)
		f.history.On("FindByLabelID", mock.Anything, "missing").Return(nil, shared.ErrNotFound)

		_, err := f.service.PrintStatus(context.Background(), "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
