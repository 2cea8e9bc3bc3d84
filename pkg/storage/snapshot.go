package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/finvia/reportd/pkg/authz"
)

// SnapshotStore persists the authorization state in the finance database.
// It implements authz.SnapshotStore.
type SnapshotStore struct {
	db     *sql.DB
	driver string
}

// NewSnapshotStore creates a snapshot store over an opened database
func NewSnapshotStore(db *sql.DB, driver string) *SnapshotStore {
	return &SnapshotStore{db: db, driver: driver}
}

// Load reads the persisted users and permission matrix. Returns nil when
// no users have been persisted yet, so callers can fall back to the seed.
func (s *SnapshotStore) Load(ctx context.Context) (*authz.Snapshot, error) {
	snap := &authz.Snapshot{}

	rows, err := s.db.QueryContext(ctx,
		Rebind(s.driver, `SELECT id, username, password, is_admin FROM authz_users ORDER BY id`))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec authz.UserRecord
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Password, &rec.IsAdmin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		snap.Users = append(snap.Users, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	if len(snap.Users) == 0 {
		return nil, nil
	}

	permRows, err := s.db.QueryContext(ctx,
		Rebind(s.driver, `SELECT user_id, company_id, can_read, can_write FROM authz_permissions ORDER BY user_id, company_id`))
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	defer permRows.Close()

	for permRows.Next() {
		var rec authz.PermissionRecord
		if err := permRows.Scan(&rec.UserID, &rec.CompanyID, &rec.CanRead, &rec.CanWrite); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		snap.Permissions = append(snap.Permissions, rec)
	}
	if err := permRows.Err(); err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	return snap, nil
}

// Save replaces the persisted state with the snapshot's contents in one
// transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap *authz.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM authz_permissions`); err != nil {
		return fmt.Errorf("clear permissions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM authz_users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	insertUser := Rebind(s.driver, `INSERT INTO authz_users (id, username, password, is_admin) VALUES (?, ?, ?, ?)`)
	for _, u := range snap.Users {
		if _, err := tx.ExecContext(ctx, insertUser, u.ID, u.Username, u.Password, u.IsAdmin); err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}

	insertPerm := Rebind(s.driver, `INSERT INTO authz_permissions (user_id, company_id, can_read, can_write) VALUES (?, ?, ?, ?)`)
	for _, p := range snap.Permissions {
		if _, err := tx.ExecContext(ctx, insertPerm, p.UserID, p.CompanyID, p.CanRead, p.CanWrite); err != nil {
			return fmt.Errorf("insert permission %d/%d: %w", p.UserID, p.CompanyID, err)
		}
	}

	return tx.Commit()
}
