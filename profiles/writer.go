package profiles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/poiesic/expertfind/core"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	user_id BIGINT PRIMARY KEY,
	first_name VARCHAR(255),
	last_name VARCHAR(255),
	expertise TEXT,
	years_of_experience VARCHAR(32),
	organization_detail TEXT,
	field_of_interest TEXT,
	requirements TEXT
)`

const insertSQL = `INSERT INTO %s (user_id, first_name, last_name, expertise, years_of_experience,
	organization_detail, field_of_interest, requirements)
	VALUES (:user_id, :first_name, :last_name, :expertise, :years_of_experience,
	:organization_detail, :field_of_interest, :requirements)`

// EnsureTable creates the profile table if it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, s.table)); err != nil {
		return s.writeError(ctx, "create table", err)
	}
	return nil
}

// Insert writes records in one statement. Blank fields are stored as NULL.
func (s *Store) Insert(ctx context.Context, records ...core.ProfileRecord) error {
	if len(records) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows := make([]profileRow, len(records))
	for i, r := range records {
		rows[i] = profileRow{
			UserID:            r.ID,
			FirstName:         nullable(r.FirstName),
			LastName:          nullable(r.LastName),
			Expertise:         nullable(r.Expertise),
			YearsOfExperience: nullable(r.YearsOfExperience),
			Organization:      nullable(r.Organization),
			FieldOfInterest:   nullable(r.FieldOfInterest),
			Requirements:      nullable(r.Requirements),
		}
	}

	if _, err := s.db.NamedExecContext(ctx, fmt.Sprintf(insertSQL, s.table), rows); err != nil {
		return s.writeError(ctx, "insert profiles", err)
	}
	s.logger.Debug("inserted profiles", "count", len(records))
	return nil
}

func (s *Store) writeError(ctx context.Context, op string, err error) error {
	if isConnectionError(ctx, err) {
		return fmt.Errorf("%w: %s: %w", core.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
