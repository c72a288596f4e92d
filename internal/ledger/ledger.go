package ledger

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyMarked means a record already exists for (person, date).
	// An expected outcome of the check-in gate, not a system fault.
	ErrAlreadyMarked = errors.New("already marked today")
	// ErrPersonNotFound means the check-in name resolved to nobody.
	ErrPersonNotFound = errors.New("person not found")
	// ErrNoRecords is returned when a listing finds an empty ledger.
	ErrNoRecords = errors.New("no attendance records found")
)

// Record is one immutable check-in event. Name is denormalized at insertion
// time and never re-derived; Date alone is the uniqueness key.
type Record struct {
	ID        int64  `json:"id"`
	PersonID  int64  `json:"person_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Timestamp string `json:"timestamp"`
}

// Entry is the (name, date, time) projection served to listing callers.
type Entry struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// Confirmation is the receipt returned for an accepted check-in. Date is
// the uniqueness key the record was filed under; Timestamp is the display
// form.
type Confirmation struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
}

// Store persists attendance records. Insert must enforce the
// per-(person_id, date) uniqueness itself and return ErrAlreadyMarked on a
// duplicate; callers never pre-read, so there is no check-then-write window.
type Store interface {
	Insert(ctx context.Context, rec Record) (int64, error)
	List(ctx context.Context) ([]Entry, error)
	// Clear empties the ledger and returns the number of removed records.
	Clear(ctx context.Context) (int64, error)
}
