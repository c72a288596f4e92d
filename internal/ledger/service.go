package ledger

import (
	"context"
	"errors"

	"facemark/internal/clock"
	"facemark/internal/person"
)

// Resolver maps a display name to a registered person. Satisfied by the
// person service.
type Resolver interface {
	GetByName(ctx context.Context, name string) (person.Person, error)
}

// Service runs the check-in gate: resolve the name, stamp the instant, and
// let the store's uniqueness rule decide marked vs already-marked.
type Service struct {
	store  Store
	people Resolver
	clk    clock.Clock
}

// NewService creates a service.
func NewService(store Store, people Resolver, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{store: store, people: people, clk: clk}
}

// CheckIn records one attendance event for name on the current date.
func (s *Service) CheckIn(ctx context.Context, name string) (Confirmation, error) {
	p, err := s.people.GetByName(ctx, name)
	if errors.Is(err, person.ErrNotFound) {
		return Confirmation{}, ErrPersonNotFound
	}
	if err != nil {
		return Confirmation{}, err
	}

	stamp := clock.Now(s.clk)
	rec := Record{
		PersonID:  p.ID,
		Name:      p.Name,
		Date:      stamp.Date,
		Time:      stamp.Time,
		Timestamp: stamp.Timestamp,
	}
	if _, err := s.store.Insert(ctx, rec); err != nil {
		return Confirmation{}, err
	}
	return Confirmation{Name: p.Name, Date: stamp.Date, Timestamp: stamp.Timestamp}, nil
}

// ListAll returns every entry, or ErrNoRecords for an empty ledger so
// callers can tell "none yet" apart from a storage failure.
func (s *Service) ListAll(ctx context.Context) ([]Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoRecords
	}
	return entries, nil
}

// ClearAll unconditionally empties the ledger.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	return s.store.Clear(ctx)
}
