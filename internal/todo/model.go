package todo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Record represents a fetched todo row. Identity is ID, which is always a numeric string.
type Record struct {
	ID             string
	Title          string
	Detail         string
	LastModifiedAt time.Time
}

// Number returns the numeric value of the id.
// Ids are numeric strings by contract; anything else panics.
func (r Record) Number() int {
	n, err := strconv.Atoi(r.ID)
	if err != nil {
		panic(fmt.Sprintf("todo: record id %q is not numeric", r.ID))
	}
	return n
}

// DisplayItem is a derived view of one Record. It points at the record instead of copying it,
// so two items derived from the same fetch share the same *Record.
type DisplayItem struct {
	record         *Record
	Selected       bool
	LastModifiedAt time.Time // when this view was derived, not when the record changed
}

// NewDisplayItem wraps rec.
func NewDisplayItem(rec *Record, selected bool, at time.Time) DisplayItem {
	return DisplayItem{record: rec, Selected: selected, LastModifiedAt: at}
}

// Record returns the wrapped record.
func (d DisplayItem) Record() *Record { return d.record }

// ID returns the wrapped record id, or "" for a zero DisplayItem.
func (d DisplayItem) ID() string {
	if d.record == nil {
		return ""
	}
	return d.record.ID
}

// WithSelected returns a copy of d with Selected set to v.
func (d DisplayItem) WithSelected(v bool) DisplayItem {
	d.Selected = v
	return d
}

// Selection is the currently selected item; nil means nothing is selected.
// Only the wrapped record id takes part in comparisons.
type Selection = *DisplayItem

// SelectedID returns the record id held by s, and false when s is empty.
func SelectedID(s Selection) (string, bool) {
	if s == nil || s.record == nil {
		return "", false
	}
	return s.record.ID, true
}

// SameRecord reports whether a and b wrap records with the same id.
func SameRecord(a, b DisplayItem) bool {
	return a.record != nil && b.record != nil && a.record.ID == b.record.ID
}

// FetchRequest is the payload handed to the fetch operation.
// It carries no query parameters; the id only correlates log lines.
type FetchRequest struct {
	ID uuid.UUID
}

// NewFetchRequest returns a request with a fresh random id.
func NewFetchRequest() FetchRequest {
	return FetchRequest{ID: uuid.New()}
}

func (r FetchRequest) String() string { return r.ID.String() }
