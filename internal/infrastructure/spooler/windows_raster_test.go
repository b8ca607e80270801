package spooler

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLabelPNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.png")
	img := imaging.New(1181, 590, image.White.C)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestFitToPrintable(t *testing.T) {
	tests := []struct {
		name  string
		w, h  float64
		caps  DeviceCaps
		wantW int
		wantH int
	}{
		{
			name:  "fits at 203 dpi",
			w:     10,
			h:     5,
			caps:  DeviceCaps{DPIX: 203, DPIY: 203, PrintableW: 832, PrintableH: 1200},
			wantW: 799,
			wantH: 399,
		},
		{
			name:  "downscaled to printable width",
			w:     10,
			h:     5,
			caps:  DeviceCaps{DPIX: 300, DPIY: 300, PrintableW: 600, PrintableH: 2000},
			wantW: 600,
			wantH: 300,
		},
		{
			name:  "downscaled to printable height",
			w:     10,
			h:     5,
			caps:  DeviceCaps{DPIX: 300, DPIY: 300, PrintableW: 5000, PrintableH: 295},
			wantW: 590,
			wantH: 295,
		},
		{
			name:  "unknown printable area",
			w:     2.54,
			h:     2.54,
			caps:  DeviceCaps{DPIX: 600, DPIY: 300},
			wantW: 600,
			wantH: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitToPrintable(tt.w, tt.h, tt.caps)
			assert.InDelta(t, tt.wantW, w, 1)
			assert.InDelta(t, tt.wantH, h, 1)
		})
	}
}

func newRasterFixture(device *fakeDevice) (*WindowsRasterBackend, *fakeOpener) {
	runner := newFakeRunner()
	runner.results["powershell"] = CommandResult{Stdout: "Zebra ZD420\r\nOffice\r\n"}
	opener := &fakeOpener{device: device}
	return NewWindowsRasterBackend(WindowsRasterConfig{Runner: runner, Devices: opener}), opener
}

func TestWindowsRaster_Print(t *testing.T) {
	device := &fakeDevice{caps: DeviceCaps{DPIX: 203, DPIY: 203, PrintableW: 832, PrintableH: 1200}}
	b, opener := newRasterFixture(device)

	job := &Job{Path: writeLabelPNG(t), Printer: "zebra", Copies: 2, WidthCm: 10, HeightCm: 5}
	require.NoError(t, b.Print(context.Background(), job))

	assert.Equal(t, []string{"Zebra ZD420"}, opener.opened)
	cycle := []string{"StartDoc", "StartPage", "Blit", "EndPage", "EndDoc"}
	assert.Equal(t, append(append([]string{}, cycle...), cycle...), device.ops)
	require.Len(t, device.blits, 2)
	assert.Equal(t, image.Pt(0, 0), device.blits[0].Min)
	assert.InDelta(t, 799, device.blits[0].Dx(), 1)
	assert.True(t, device.closed)
}

func TestWindowsRaster_SizeFromImageWhenJobHasNone(t *testing.T) {
	device := &fakeDevice{caps: DeviceCaps{DPIX: 300, DPIY: 300, PrintableW: 5000, PrintableH: 5000}}
	b, _ := newRasterFixture(device)

	require.NoError(t, b.Print(context.Background(), &Job{Path: writeLabelPNG(t), Copies: 1}))
	require.Len(t, device.blits, 1)
	assert.InDelta(t, 1181, device.blits[0].Dx(), 1)
	assert.InDelta(t, 590, device.blits[0].Dy(), 1)
}

func TestWindowsRaster_CopyFailureAborts(t *testing.T) {
	device := &fakeDevice{
		caps:     DeviceCaps{DPIX: 203, DPIY: 203, PrintableW: 832, PrintableH: 1200},
		failOn:   "StartPage",
		failFrom: 2,
	}
	b, _ := newRasterFixture(device)

	err := b.Print(context.Background(), &Job{Path: writeLabelPNG(t), Copies: 4, WidthCm: 10, HeightCm: 5})
	require.Error(t, err)
	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Len(t, device.blits, 1)
	assert.Equal(t, "EndDoc", device.ops[len(device.ops)-1], "failed page closes its document")
}

func TestWindowsRaster_UnresolvedPrinterOpensDefault(t *testing.T) {
	device := &fakeDevice{caps: DeviceCaps{DPIX: 203, DPIY: 203}}
	b, opener := newRasterFixture(device)

	require.NoError(t, b.Print(context.Background(), &Job{Path: writeLabelPNG(t), Printer: "Brother", Copies: 1, WidthCm: 10, HeightCm: 5}))
	assert.Equal(t, []string{""}, opener.opened)
}

func TestWindowsRaster_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		b, _ := newRasterFixture(&fakeDevice{})
		err := b.Print(context.Background(), &Job{Path: filepath.Join(t.TempDir(), "none.png"), Copies: 1})
		assert.Error(t, err)
	})

	t.Run("device unavailable", func(t *testing.T) {
		b, opener := newRasterFixture(&fakeDevice{})
		opener.openErr = errors.New("CreateDC failed")
		err := b.Print(context.Background(), &Job{Path: writeLabelPNG(t), Copies: 1})
		assert.ErrorContains(t, err, "open device")
	})
}
