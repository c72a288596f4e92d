package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code for a unique-constraint breach.
const uniqueViolation = "23505"

// Repository persists people in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a person and returns the assigned id.
func (r *Repository) Create(ctx context.Context, reg Registration) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO people (name, image, address, dob, role, section_or_staff, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, reg.Name, reg.Image, reg.Address, reg.DOB, reg.Role, reg.SectionOrStaff, reg.PhoneNumber).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateName, reg.Name)
		}
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return id, nil
}

// Get returns a person by id.
func (r *Repository) Get(ctx context.Context, id int64) (Person, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, image, address, dob, role, section_or_staff, phone_number
		FROM people WHERE id = $1
	`, id)
	return scanPerson(row)
}

// GetByName returns a person by display name.
func (r *Repository) GetByName(ctx context.Context, name string) (Person, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, image, address, dob, role, section_or_staff, phone_number
		FROM people WHERE name = $1
	`, name)
	return scanPerson(row)
}

func scanPerson(row *sql.Row) (Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.Name, &p.Image, &p.Address, &p.DOB, &p.Role, &p.SectionOrStaff, &p.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return Person{}, ErrNotFound
	}
	if err != nil {
		return Person{}, fmt.Errorf("scan person: %w", err)
	}
	return p, nil
}

// List returns every person in insertion order.
func (r *Repository) List(ctx context.Context) ([]Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, image, address, dob, role, section_or_staff, phone_number
		FROM people ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Address, &p.DOB, &p.Role, &p.SectionOrStaff, &p.PhoneNumber); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// ListProfiles returns the name+image projection for every person.
func (r *Repository) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, image FROM people ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.Name, &p.Image); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Delete removes a person. Attendance records cascade via the foreign key,
// so the person row and its records disappear in one statement.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
