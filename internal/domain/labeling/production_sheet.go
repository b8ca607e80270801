package labeling

import (
	"strings"
	"time"
)

// Shift identifies the working shift a production sheet covers
type Shift string

const (
	ShiftAM        Shift = "AM"
	ShiftPM        Shift = "PM"
	ShiftGraveyard Shift = "Graveyard"
)

// ProductionTableCapacity is the fixed number of rows on the printed sheet
const ProductionTableCapacity = 15

// IsValid checks if the Shift is a valid value
func (s Shift) IsValid() bool {
	switch s {
	case ShiftAM, ShiftPM, ShiftGraveyard:
		return true
	}
	return false
}

// String returns the string representation of Shift
func (s Shift) String() string {
	return string(s)
}

// ParseShift accepts any casing and returns the canonical Shift.
func ParseShift(raw string) (Shift, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range []Shift{ShiftAM, ShiftPM, ShiftGraveyard} {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", ErrInvalidShift
}

// RowEntry is one line of the production table. Every field is optional.
type RowEntry struct {
	LotCodes  string `json:"lot_codes"`
	BagQty    string `json:"bag_qty"`
	PalletNum string `json:"pallet_num"`
	TotalKg   string `json:"total_kg"`
	Notes     string `json:"notes"`
	Initial   string `json:"initial"`
}

// IsEmpty reports whether the row carries no data
func (r RowEntry) IsEmpty() bool {
	return r == RowEntry{}
}

// ProductionSheetRecord is one A4 production form
type ProductionSheetRecord struct {
	Date             string     `json:"date"`
	Shift            Shift      `json:"shift"`
	Supervisor       string     `json:"supervisor"`
	Employee         string     `json:"employee"`
	Product          string     `json:"product"`
	BulkLotCode      string     `json:"bulk_lot_code"`
	ParchmentReuse   bool       `json:"parchment_reuse"`
	ParchmentLotCode string     `json:"parchment_lot_code"`
	Quantity         string     `json:"quantity"`
	QualityCheck     string     `json:"quality_check_initial"`
	ProductionTable  []RowEntry `json:"production_table"`
	SavedAt          time.Time  `json:"saved_at"`
}

// SheetKey is the upsert identity of a production sheet
type SheetKey struct {
	Date  string
	Shift Shift
}

// Key returns the (date, shift) identity
func (r *ProductionSheetRecord) Key() SheetKey {
	return SheetKey{Date: r.Date, Shift: r.Shift}
}

// Normalize fills the date and canonicalizes the shift. It fails only for
// an unknown shift.
func (r *ProductionSheetRecord) Normalize(now time.Time) error {
	shift, err := ParseShift(string(r.Shift))
	if err != nil {
		return err
	}
	r.Shift = shift
	r.Date = strings.TrimSpace(r.Date)
	if r.Date == "" {
		r.Date = now.Format(DateLayout)
	}
	return nil
}

// VisibleRows returns the rows that fit on the printed table, padded with
// empty rows up to the table capacity.
func (r *ProductionSheetRecord) VisibleRows() []RowEntry {
	rows := make([]RowEntry, ProductionTableCapacity)
	copy(rows, r.ProductionTable)
	return rows
}

// UpsertSheet replaces the record with the same key in place or appends it.
// The returned flag is true when an existing record was replaced.
func UpsertSheet(records []ProductionSheetRecord, rec ProductionSheetRecord) ([]ProductionSheetRecord, bool) {
	for i := range records {
		if records[i].Key() == rec.Key() {
			records[i] = rec
			return records, true
		}
	}
	return append(records, rec), false
}

// RemoveSheet deletes the record with the given key.
func RemoveSheet(records []ProductionSheetRecord, key SheetKey) ([]ProductionSheetRecord, bool) {
	for i := range records {
		if records[i].Key() == key {
			return append(records[:i], records[i+1:]...), true
		}
	}
	return records, false
}
