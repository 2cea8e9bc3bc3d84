package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvia/reportd/pkg/authz"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid postgres", Config{Driver: DriverPostgres, DSN: "postgres://localhost/reportd"}, false},
		{"valid sqlite", Config{Driver: DriverSQLite, DSN: ":memory:"}, false},
		{"unknown driver", Config{Driver: "mysql", DSN: "x"}, true},
		{"missing dsn", Config{Driver: DriverSQLite}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		query  string
		want   string
	}{
		{
			"sqlite unchanged",
			DriverSQLite,
			"SELECT id FROM companies WHERE id = ?",
			"SELECT id FROM companies WHERE id = ?",
		},
		{
			"postgres single",
			DriverPostgres,
			"SELECT id FROM companies WHERE id = ?",
			"SELECT id FROM companies WHERE id = $1",
		},
		{
			"postgres multiple",
			DriverPostgres,
			"INSERT INTO projects (id, company_id, name) VALUES (?, ?, ?)",
			"INSERT INTO projects (id, company_id, name) VALUES ($1, $2, $3)",
		},
		{
			"postgres none",
			DriverPostgres,
			"SELECT COUNT(*) FROM companies",
			"SELECT COUNT(*) FROM companies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.driver, tt.query))
		})
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, DriverSQLite))
	require.NoError(t, Migrate(ctx, db, DriverSQLite), "migrate must be idempotent")

	_, err = db.ExecContext(ctx, `INSERT INTO companies (id, name) VALUES (1, 'Acme Construction')`)
	require.NoError(t, err)

	var name string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT name FROM companies WHERE id = 1`).Scan(&name))
	assert.Equal(t, "Acme Construction", name)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, DriverSQLite))

	store := NewSnapshotStore(db, DriverSQLite)

	t.Run("empty store loads nil", func(t *testing.T) {
		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, snap, "empty store signals fallback to seed")
	})

	svc := authz.NewService(authz.DefaultSeed())
	_, err = svc.GrantPermission(authz.Identity{UserID: 1, IsAdmin: true}, 3, 4, true, false)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, svc.Snapshot()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Users, 3)
	assert.Len(t, loaded.Permissions, 3)

	restored := authz.NewService(nil)
	require.NoError(t, restored.Restore(loaded))

	assert.True(t, restored.CanModifyCompany(2, 1))
	assert.True(t, restored.CanAccessCompany(3, 4))
	assert.False(t, restored.CanModifyCompany(3, 4))

	t.Run("save replaces previous state", func(t *testing.T) {
		trimmed := &authz.Snapshot{
			Users: []authz.UserRecord{{ID: 1, Username: "admin", Password: "admin123", IsAdmin: true}},
		}
		require.NoError(t, store.Save(ctx, trimmed))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Len(t, loaded.Users, 1)
		assert.Empty(t, loaded.Permissions)
	})
}
