// Package allowlist stores the contacts a restricted service may send to.
//
// Contacts are kept in PostgreSQL as written, next to their normalised
// comparison key, so the same number typed two ways is stored once.
package allowlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/recipientcsv/internal/core"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Schema creates the allow-list table.
const Schema = `
CREATE TABLE IF NOT EXISTS service_allow_list (
	service_id  uuid        NOT NULL,
	contact     text        NOT NULL,
	contact_key text        NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (service_id, contact_key)
)`

const (
	insertContacts = `
INSERT INTO service_allow_list (service_id, contact, contact_key)
SELECT $1::uuid, c.contact, c.contact_key
FROM unnest($2::text[], $3::text[]) AS c(contact, contact_key)
ON CONFLICT (service_id, contact_key) DO NOTHING`

	deleteContact = `DELETE FROM service_allow_list WHERE service_id = $1::uuid AND contact_key = $2`

	selectContacts = `SELECT contact FROM service_allow_list WHERE service_id = $1::uuid ORDER BY created_at, contact_key`

	countContacts = `SELECT count(*) FROM service_allow_list WHERE service_id = $1::uuid`
)

// ErrEmptyContact is returned when a blank contact is added.
var ErrEmptyContact = errors.New("allow-list contact is empty")

// Store reads and writes allow-lists.
type Store struct {
	db      DBTX
	timeout time.Duration
}

// NewStore returns a store using db. A positive timeout bounds each query.
func NewStore(db DBTX, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// EnsureSchema creates the table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create allow-list table: %w", err)
	}
	return nil
}

// Add stores contacts for a service and returns how many were new.
func (s *Store) Add(ctx context.Context, serviceID uuid.UUID, contacts ...string) (int64, error) {
	raw := make([]string, 0, len(contacts))
	keys := make([]string, 0, len(contacts))
	for _, c := range contacts {
		key := core.NormaliseContact(c)
		if key == "" {
			return 0, ErrEmptyContact
		}
		raw = append(raw, core.CleanCell(c))
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, insertContacts, serviceID.String(), raw, keys)
	if err != nil {
		return 0, fmt.Errorf("add allow-list contacts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Remove deletes a contact, written in any format, and reports whether it
// was present.
func (s *Store) Remove(ctx context.Context, serviceID uuid.UUID, contact string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.db.Exec(ctx, deleteContact, serviceID.String(), core.NormaliseContact(contact))
	if err != nil {
		return false, fmt.Errorf("remove allow-list contact: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Contacts returns a service's contacts as they were written.
func (s *Store) Contacts(ctx context.Context, serviceID uuid.UUID) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, selectContacts, serviceID.String())
	if err != nil {
		return nil, fmt.Errorf("query allow-list: %w", err)
	}
	contacts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read allow-list: %w", err)
	}
	return contacts, nil
}

// Count returns how many contacts a service has.
func (s *Store) Count(ctx context.Context, serviceID uuid.UUID) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int
	if err := s.db.QueryRow(ctx, countContacts, serviceID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count allow-list: %w", err)
	}
	return n, nil
}

// Load returns the service's allow-list ready for a batch check.
func (s *Store) Load(ctx context.Context, serviceID uuid.UUID) (*core.AllowList, error) {
	contacts, err := s.Contacts(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return core.NewAllowList(contacts...), nil
}
