package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	svc := newTestService()
	_, err := svc.GrantPermission(asAdmin, 3, 4, true, false)
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Len(t, snap.Users, 3)
	require.Len(t, snap.Permissions, 3)

	restored := NewService(nil)
	require.NoError(t, restored.Restore(snap))

	res, err := restored.Login("finance_a", "finance123")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.UserID)

	assert.True(t, restored.CanModifyCompany(2, 1))
	assert.True(t, restored.CanAccessCompany(3, 4))
	assert.False(t, restored.CanModifyCompany(3, 4))
	assert.True(t, restored.CanAccessCompany(1, 99), "restored admin keeps the bypass")
}

func TestSnapshotExcludesSessions(t *testing.T) {
	svc := newTestService()
	res, err := svc.Login("admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, svc.Restore(svc.Snapshot()))

	_, ok := svc.ValidateToken(res.Token)
	assert.False(t, ok, "restore must invalidate live sessions")
}

func TestRestoreValidation(t *testing.T) {
	svc := newTestService()

	assert.ErrorIs(t, svc.Restore(nil), ErrInvalidParams)

	err := svc.Restore(&Snapshot{Users: []UserRecord{{ID: 0, Username: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestRestoreReassertsInvariants(t *testing.T) {
	svc := NewService(nil)

	snap := &Snapshot{
		Users: []UserRecord{
			{ID: 1, Username: "root", Password: "pw", IsAdmin: true},
			{ID: 2, Username: "u", Password: "pw"},
		},
		Permissions: []PermissionRecord{
			// write without read: must be healed on restore
			{UserID: 2, CompanyID: 3, CanWrite: true},
			// both false: must be dropped
			{UserID: 2, CompanyID: 4},
			// admin entry: must be ignored
			{UserID: 1, CompanyID: 5, CanRead: true},
			// unknown user: must be ignored
			{UserID: 9, CompanyID: 6, CanRead: true},
		},
	}
	require.NoError(t, svc.Restore(snap))

	perms, err := svc.ListPermissions(Identity{UserID: 1, IsAdmin: true})
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Len(t, perms[0].Companies, 1)
	g := perms[0].Companies[0]
	assert.Equal(t, int64(3), g.CompanyID)
	assert.True(t, g.CanRead, "write-implies-read healed")
	assert.True(t, g.CanWrite)
}
