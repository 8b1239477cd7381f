// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package profiles

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/poiesic/expertfind/core"
)

const (
	defaultTable   = "grandu_user"
	defaultTimeout = 10 * time.Second
)

// Config describes how to reach the profile table.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Table    string
	Timeout  time.Duration
}

// DSN renders the MySQL data source name for the config.
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.Timeout = c.Timeout
	return mc.FormatDSN()
}

// Store reads profile rows through sqlx.
type Store struct {
	db      *sqlx.DB
	table   string
	timeout time.Duration
	logger  *slog.Logger
}

// profileRow mirrors the selected columns. Every text column is nullable.
type profileRow struct {
	UserID            int64          `db:"user_id"`
	FirstName         sql.NullString `db:"first_name"`
	LastName          sql.NullString `db:"last_name"`
	Expertise         sql.NullString `db:"expertise"`
	YearsOfExperience sql.NullString `db:"years_of_experience"`
	Organization      sql.NullString `db:"organization_detail"`
	FieldOfInterest   sql.NullString `db:"field_of_interest"`
	Requirements      sql.NullString `db:"requirements"`
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	db, err := sqlx.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: open mysql: %w", core.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping mysql: %w", core.ErrStoreUnavailable, err)
	}

	return NewStore(db, cfg.Table, cfg.Timeout)
}

// NewStore wraps an existing connection.
// An empty table selects the default profile table.
func NewStore(db *sqlx.DB, table string, timeout time.Duration) (*Store, error) {
	if table == "" {
		table = defaultTable
	}
	if !validIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		db:      db,
		table:   table,
		timeout: timeout,
		logger:  slog.Default().With("component", "profile-store"),
	}, nil
}

// FetchAll returns every profile row in table order.
func (s *Store) FetchAll(ctx context.Context) ([]core.ProfileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT user_id, first_name, last_name, expertise, years_of_experience,
	organization_detail, field_of_interest, requirements FROM %s`, s.table)

	var rows []profileRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		if isConnectionError(ctx, err) {
			s.logger.Error("profile store unreachable", "err", err)
			return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
		s.logger.Error("profile query failed", "table", s.table, "err", err)
		return []core.ProfileRecord{}, fmt.Errorf("%w: %w", core.ErrStoreQuery, err)
	}

	records := make([]core.ProfileRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, core.ProfileRecord{
			ID:                row.UserID,
			FirstName:         row.FirstName.String,
			LastName:          row.LastName.String,
			Expertise:         row.Expertise.String,
			YearsOfExperience: row.YearsOfExperience.String,
			Organization:      row.Organization.String,
			FieldOfInterest:   row.FieldOfInterest.String,
			Requirements:      row.Requirements.String,
		})
	}

	s.logger.Debug("fetched profiles", "count", len(records))
	return records, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func isConnectionError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func validIdentifier(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return name != ""
}
