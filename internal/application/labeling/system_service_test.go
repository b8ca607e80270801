package labeling_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelprint/backend/internal/application/labeling"
	domain "github.com/labelprint/backend/internal/domain/labeling"
	"github.com/labelprint/backend/internal/infrastructure/spooler"
)

func newSystemFixture() (*MockSettingsStore, *MockDispatcher, *labeling.SystemService) {
	settings := new(MockSettingsStore)
	dispatcher := new(MockDispatcher)
	svc := labeling.NewSystemService(settings, dispatcher, "1.0.0", nil).WithClock(fixedClock)
	return settings, dispatcher, svc
}

func TestSystemService_Status(t *testing.T) {
	settings, dispatcher, svc := newSystemFixture()
	settings.On("Get").Return(domain.DefaultLabelSizeConfig())
	dispatcher.On("LabelBackend").Return(spooler.BackendCups)
	dispatcher.On("DocumentBackend").Return(spooler.BackendCups)

	status := svc.Status(context.Background())
	assert.Equal(t, &labeling.StatusResult{
		Status:          labeling.StatusRunning,
		ServerTime:      fixedNow,
		Version:         "1.0.0",
		LabelSize:       "10cm x 5cm",
		LabelBackend:    "cups",
		DocumentBackend: "cups",
	}, status)
}

func TestSystemService_Printers(t *testing.T) {
	_, dispatcher, svc := newSystemFixture()
	printers := []spooler.Printer{{Name: "Zebra", Status: "available"}}
	dispatcher.On("Printers", context.Background(), true).Return(printers)

	assert.Equal(t, printers, svc.Printers(context.Background(), true))
}

func TestSystemService_UpdateSettings(t *testing.T) {
	width := 8.0
	patch := domain.LabelSizePatch{WidthCm: &width}

	t.Run("applied", func(t *testing.T) {
		settings, _, svc := newSystemFixture()
		updated := domain.DefaultLabelSizeConfig()
		updated.WidthCm = width
		settings.On("Update", patch).Return(updated, nil)

		cfg, err := svc.UpdateSettings(context.Background(), patch)
		require.NoError(t, err)
		assert.Equal(t, "8cm x 5cm", cfg.SizeLabel())
	})

	t.Run("rejected", func(t *testing.T) {
		settings, _, svc := newSystemFixture()
		settings.On("Update", patch).Return(domain.DefaultLabelSizeConfig(), domain.ErrInvalidLabelSize)

		_, err := svc.UpdateSettings(context.Background(), patch)
		assert.ErrorIs(t, err, domain.ErrInvalidLabelSize)
	})

	t.Run("settings read through", func(t *testing.T) {
		settings, _, svc := newSystemFixture()
		settings.On("Get").Return(domain.DefaultLabelSizeConfig())
		assert.Equal(t, domain.DefaultLabelSizeConfig(), svc.Settings())
	})
}
