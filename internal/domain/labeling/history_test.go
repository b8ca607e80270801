package labeling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHistory_AddKeepsNewestFirstAndCaps(t *testing.T) {
	h := NewPrintHistory(nil)
	for i := 0; i < HistoryCapacity+7; i++ {
		h.Add(HistoryEntry{LabelID: fmt.Sprintf("L%d", i)})
	}

	entries := h.Entries()
	require.Len(t, entries, HistoryCapacity)
	assert.Equal(t, fmt.Sprintf("L%d", HistoryCapacity+6), entries[0].LabelID)
	assert.Equal(t, "L7", entries[HistoryCapacity-1].LabelID, "oldest seven evicted")
}

func TestNewPrintHistory_TrimsOversizedInput(t *testing.T) {
	h := NewPrintHistory(make([]HistoryEntry, HistoryCapacity+1))
	assert.Equal(t, HistoryCapacity, h.Len())
}

func TestPrintHistory_Find(t *testing.T) {
	h := NewPrintHistory(nil)
	h.Add(HistoryEntry{LabelID: "A", NetWeight: "1.0"})
	h.Add(HistoryEntry{LabelID: "A", NetWeight: "2.0"})

	e, ok := h.Find("A")
	require.True(t, ok)
	assert.Equal(t, "2.0", e.NetWeight)

	_, ok = h.Find("missing")
	assert.False(t, ok)
}

func TestNewHistoryEntry(t *testing.T) {
	w, err := CalculateNetWeight("15.0", "2.0", "3.0")
	require.NoError(t, err)
	rec := &LabelRecord{LabelID: "ID1", Weight: w, Date: "2024-05-01", Printer: "Zebra", Copies: 2}
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	e := NewHistoryEntry(rec, at)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "ID1", e.LabelID)
	assert.Equal(t, "15", e.TotalWeight)
	assert.Equal(t, "2", e.PalletWeight)
	assert.Equal(t, "3", e.ExtraWeight)
	assert.Equal(t, "10.0", e.NetWeight)
	assert.Equal(t, at, e.Timestamp)
	assert.Equal(t, 2, e.Copies)
}
