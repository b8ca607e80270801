package spooler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBackend(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		role    Role
		goos    string
		want    string
		wantErr bool
	}{
		{"auto label on linux", "auto", RoleLabel, "linux", BackendCups, false},
		{"empty document on darwin", "", RoleDocument, "darwin", BackendCups, false},
		{"auto label on windows", "auto", RoleLabel, "windows", BackendWindowsRaster, false},
		{"auto document on windows", "AUTO", RoleDocument, "windows", BackendWindowsVector, false},
		{"explicit overrides platform", "cups", RoleLabel, "windows", BackendCups, false},
		{"explicit vector for labels", "windows-vector", RoleLabel, "linux", BackendWindowsVector, false},
		{"unknown", "zpl", RoleLabel, "linux", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBackend(tt.config, tt.role, tt.goos)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownBackend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBackendFactory_New(t *testing.T) {
	f := BackendFactory{GOOS: "windows"}

	label, err := f.New("auto", RoleLabel)
	require.NoError(t, err)
	assert.IsType(t, &WindowsRasterBackend{}, label)

	doc, err := f.New("auto", RoleDocument)
	require.NoError(t, err)
	assert.IsType(t, &WindowsVectorBackend{}, doc)

	f.GOOS = "linux"
	cups, err := f.New("auto", RoleDocument)
	require.NoError(t, err)
	assert.Equal(t, BackendCups, cups.Name())

	_, err = f.New("bogus", RoleLabel)
	assert.Error(t, err)
}

// stubBackend counts calls
type stubBackend struct {
	name     string
	printers []Printer
	listed   int
	jobs     []*Job
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Print(_ context.Context, job *Job) error {
	b.jobs = append(b.jobs, job)
	return nil
}

func (b *stubBackend) Printers(context.Context) []Printer {
	b.listed++
	return b.printers
}

type mapCache map[string][]Printer

func (c mapCache) Get(_ context.Context, key string) ([]Printer, bool) {
	p, ok := c[key]
	return p, ok
}

func (c mapCache) Set(_ context.Context, key string, printers []Printer) {
	c[key] = printers
}

func TestDispatcher(t *testing.T) {
	label := &stubBackend{name: BackendWindowsRaster}
	doc := &stubBackend{name: BackendWindowsVector, printers: []Printer{{Name: "Zebra", Status: StatusAvailable}}}
	cache := mapCache{}
	d := NewDispatcher(DispatcherConfig{Label: label, Document: doc, Cache: cache})

	t.Run("routes by role", func(t *testing.T) {
		require.NoError(t, d.PrintLabel(context.Background(), &Job{Path: "l.png", Copies: 1}))
		require.NoError(t, d.PrintDocument(context.Background(), &Job{Path: "s.pdf", Copies: 1}))
		assert.Len(t, label.jobs, 1)
		assert.Len(t, doc.jobs, 1)
		assert.Equal(t, BackendWindowsRaster, d.LabelBackend())
		assert.Equal(t, BackendWindowsVector, d.DocumentBackend())
	})

	t.Run("printer list cached until refresh", func(t *testing.T) {
		assert.Len(t, d.Printers(context.Background(), false), 1)
		assert.Len(t, d.Printers(context.Background(), false), 1)
		assert.Equal(t, 1, doc.listed)

		d.Printers(context.Background(), true)
		assert.Equal(t, 2, doc.listed)
		assert.Contains(t, cache, "printers:"+BackendWindowsVector)
	})

	t.Run("nil enumeration becomes empty", func(t *testing.T) {
		empty := NewDispatcher(DispatcherConfig{Label: label, Document: &stubBackend{name: BackendCups}})
		printers := empty.Printers(context.Background(), false)
		assert.NotNil(t, printers)
		assert.Empty(t, printers)
	})
}
