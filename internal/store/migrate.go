package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate applies the schema. UNIQUE (person_id, date) is the check-in
// gate's arbiter; ON DELETE CASCADE makes person deletion take the person's
// records with it in one statement.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id               BIGSERIAL PRIMARY KEY,
		name             TEXT NOT NULL UNIQUE,
		image            TEXT NOT NULL,
		address          TEXT NOT NULL,
		dob              TEXT NOT NULL,
		role             TEXT NOT NULL,
		section_or_staff TEXT NOT NULL,
		phone_number     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id        BIGSERIAL PRIMARY KEY,
		person_id BIGINT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		date      TEXT NOT NULL,
		time      TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		UNIQUE (person_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_person ON attendance(person_id);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
