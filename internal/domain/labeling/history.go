package labeling

import (
	"time"

	"github.com/google/uuid"
)

// HistoryCapacity is the number of print records kept; older ones are evicted.
const HistoryCapacity = 50

// HistoryEntry records one successful label print
type HistoryEntry struct {
	ID           uuid.UUID `json:"id"`
	LabelID      string    `json:"label_id"`
	Timestamp    time.Time `json:"timestamp"`
	Date         string    `json:"date"`
	TotalWeight  string    `json:"total_weight"`
	PalletWeight string    `json:"pallet_weight"`
	ExtraWeight  string    `json:"extra_weight"`
	NetWeight    string    `json:"net_weight"`
	Printer      string    `json:"printer"`
	Copies       int       `json:"copies"`
}

// NewHistoryEntry builds the history record for a printed label
func NewHistoryEntry(rec *LabelRecord, printedAt time.Time) HistoryEntry {
	return HistoryEntry{
		ID:           uuid.New(),
		LabelID:      rec.LabelID,
		Timestamp:    printedAt,
		Date:         rec.Date,
		TotalWeight:  rec.Weight.Total.String(),
		PalletWeight: rec.Weight.Pallet.String(),
		ExtraWeight:  rec.Weight.Extra.String(),
		NetWeight:    rec.NetWeightDisplay(),
		Printer:      rec.Printer,
		Copies:       rec.Copies,
	}
}

// PrintHistory is a newest-first list bounded by HistoryCapacity
type PrintHistory struct {
	entries []HistoryEntry
}

// NewPrintHistory wraps existing entries, already ordered newest first,
// trimming anything past the capacity.
func NewPrintHistory(entries []HistoryEntry) *PrintHistory {
	h := &PrintHistory{entries: entries}
	h.trim()
	return h
}

// Add inserts the entry at the front and evicts the oldest past capacity
func (h *PrintHistory) Add(e HistoryEntry) {
	h.entries = append([]HistoryEntry{e}, h.entries...)
	h.trim()
}

// Entries returns a copy of the entries, newest first
func (h *PrintHistory) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Find returns the newest entry with the given label id
func (h *PrintHistory) Find(labelID string) (HistoryEntry, bool) {
	for _, e := range h.entries {
		if e.LabelID == labelID {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// Len returns the number of entries
func (h *PrintHistory) Len() int {
	return len(h.entries)
}

func (h *PrintHistory) trim() {
	if len(h.entries) > HistoryCapacity {
		h.entries = h.entries[:HistoryCapacity]
	}
}
