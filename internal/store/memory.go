package store

import (
	"context"
	"fmt"
	"sync"

	"facemark/internal/ledger"
	"facemark/internal/person"
)

// Memory is an in-process backend implementing both domain stores over one
// lock, so person deletion and its record cascade are a single critical
// section and racing check-ins are serialized the same way the Postgres
// unique constraint serializes them. Used for dev and as the test substrate.
type Memory struct {
	mu           sync.Mutex
	nextPersonID int64
	nextRecordID int64
	people       []person.Person
	records      []ledger.Record
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// People returns the person.Store view.
func (m *Memory) People() person.Store { return memPeople{m} }

// Ledger returns the ledger.Store view.
func (m *Memory) Ledger() ledger.Store { return memLedger{m} }

type memPeople struct{ m *Memory }

func (s memPeople) Create(ctx context.Context, reg person.Registration) (int64, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.people {
		if p.Name == reg.Name {
			return 0, fmt.Errorf("%w: %s", person.ErrDuplicateName, reg.Name)
		}
	}
	m.nextPersonID++
	m.people = append(m.people, person.Person{
		ID:             m.nextPersonID,
		Name:           reg.Name,
		Image:          reg.Image,
		Address:        reg.Address,
		DOB:            reg.DOB,
		Role:           reg.Role,
		SectionOrStaff: reg.SectionOrStaff,
		PhoneNumber:    reg.PhoneNumber,
	})
	return m.nextPersonID, nil
}

func (s memPeople) Get(ctx context.Context, id int64) (person.Person, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.people {
		if p.ID == id {
			return p, nil
		}
	}
	return person.Person{}, person.ErrNotFound
}

func (s memPeople) GetByName(ctx context.Context, name string) (person.Person, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.people {
		if p.Name == name {
			return p, nil
		}
	}
	return person.Person{}, person.ErrNotFound
}

func (s memPeople) List(ctx context.Context) ([]person.Person, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]person.Person, len(s.m.people))
	copy(out, s.m.people)
	return out, nil
}

func (s memPeople) ListProfiles(ctx context.Context) ([]person.Profile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]person.Profile, 0, len(s.m.people))
	for _, p := range s.m.people {
		out = append(out, person.Profile{Name: p.Name, Image: p.Image})
	}
	return out, nil
}

// Delete removes the person and every record referencing it under one lock,
// matching the atomicity of the Postgres cascade.
func (s memPeople) Delete(ctx context.Context, id int64) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, p := range m.people {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return person.ErrNotFound
	}
	m.people = append(m.people[:idx], m.people[idx+1:]...)

	kept := m.records[:0]
	for _, rec := range m.records {
		if rec.PersonID != id {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

type memLedger struct{ m *Memory }

func (s memLedger) Insert(ctx context.Context, rec ledger.Record) (int64, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.PersonID == rec.PersonID && existing.Date == rec.Date {
			return 0, ledger.ErrAlreadyMarked
		}
	}
	m.nextRecordID++
	rec.ID = m.nextRecordID
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (s memLedger) List(ctx context.Context) ([]ledger.Entry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]ledger.Entry, 0, len(s.m.records))
	for _, rec := range s.m.records {
		out = append(out, ledger.Entry{Name: rec.Name, Date: rec.Date, Time: rec.Time})
	}
	return out, nil
}

func (s memLedger) Clear(ctx context.Context) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	removed := int64(len(s.m.records))
	s.m.records = nil
	return removed, nil
}
