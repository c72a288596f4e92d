package person

import (
	"context"
	"fmt"
)

// Service owns registration validation and wraps the store with the
// not-found vs empty-result distinction the callers rely on.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register validates the seven required fields and persists the person.
func (s *Service) Register(ctx context.Context, reg Registration) (int64, error) {
	if err := reg.Validate(); err != nil {
		return 0, err
	}
	return s.store.Create(ctx, reg)
}

// Get returns a person by id.
func (s *Service) Get(ctx context.Context, id int64) (Person, error) {
	return s.store.Get(ctx, id)
}

// GetByName returns a person by display name.
func (s *Service) GetByName(ctx context.Context, name string) (Person, error) {
	if name == "" {
		return Person{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.store.GetByName(ctx, name)
}

// List returns every person, or ErrNoProfiles when the registry is empty.
func (s *Service) List(ctx context.Context) ([]Person, error) {
	people, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, ErrNoProfiles
	}
	return people, nil
}

// ListProfiles returns the name+image projection. An empty slice is a valid
// result here: the face client treats "nobody registered yet" as normal.
func (s *Service) ListProfiles(ctx context.Context) ([]Profile, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []Profile{}
	}
	return profiles, nil
}

// Delete removes a person along with their attendance records.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
