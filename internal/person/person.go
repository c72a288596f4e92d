package person

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a singular lookup misses.
	ErrNotFound = errors.New("person not found")
	// ErrNoProfiles is returned when a full-profile listing finds no rows.
	// Distinct from an error: the query itself succeeded.
	ErrNoProfiles = errors.New("no profiles found")
	// ErrValidation wraps every missing-field rejection; checked with errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateName rejects registration of an already-taken display name.
	// Check-in is keyed by name, so names must resolve to one person.
	ErrDuplicateName = errors.New("name already registered")
)

// Person is a registered, attendable subject.
type Person struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	Address        string `json:"address"`
	DOB            string `json:"dob"`
	Role           string `json:"role"`
	SectionOrStaff string `json:"section_or_staff"`
	PhoneNumber    string `json:"phone_number"`
}

// Profile is the name+image projection served to the face-recognition client.
type Profile struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Registration carries the seven required attributes of a new person.
// Fields are stored verbatim; presence is the only validation.
type Registration struct {
	Name           string
	Image          string
	Address        string
	DOB            string
	Role           string
	SectionOrStaff string
	PhoneNumber    string
}

// Validate reports the first missing field.
func (r Registration) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", r.Name},
		{"image", r.Image},
		{"address", r.Address},
		{"dob", r.DOB},
		{"role", r.Role},
		{"section_or_staff", r.SectionOrStaff},
		{"phone_number", r.PhoneNumber},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}
	return nil
}

// Store persists people. Implemented by the Postgres repository and the
// in-memory backend.
type Store interface {
	Create(ctx context.Context, reg Registration) (int64, error)
	Get(ctx context.Context, id int64) (Person, error)
	GetByName(ctx context.Context, name string) (Person, error)
	List(ctx context.Context) ([]Person, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	// Delete removes the person and, atomically, every attendance record
	// referencing it.
	Delete(ctx context.Context, id int64) error
}
