package authz

import "context"

// UserRecord is the durable form of a user.
type UserRecord struct {
	ID       int64
	Username string
	Password string
	IsAdmin  bool
}

// PermissionRecord is the durable form of one matrix entry.
type PermissionRecord struct {
	UserID    int64
	CompanyID int64
	CanRead   bool
	CanWrite  bool
}

// Snapshot is a point-in-time copy of users and permissions. Sessions are
// deliberately excluded: tokens live for the process lifetime only.
type Snapshot struct {
	Users       []UserRecord
	Permissions []PermissionRecord
}

// SnapshotStore is the pluggable persistence hook. The core never talks to
// a database directly; a durable backend implements this interface and the
// composition layer decides when to Save and Restore.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Snapshot captures the current users and permission matrix.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{}
	for _, u := range s.sortedUsersLocked() {
		snap.Users = append(snap.Users, UserRecord{ID: u.ID, Username: u.Username, Password: u.Password, IsAdmin: u.IsAdmin})
		for _, g := range s.grantsLocked(u.ID) {
			snap.Permissions = append(snap.Permissions, PermissionRecord{
				UserID:    u.ID,
				CompanyID: g.CompanyID,
				CanRead:   g.CanRead,
				CanWrite:  g.CanWrite,
			})
		}
	}

	return snap
}

// Restore replaces users and permissions with the snapshot's contents.
// Matrix entries for admins or unknown users are dropped, and the
// write-implies-read invariant is re-asserted on every entry. All live
// sessions are invalidated: identities may have changed out from under
// them.
func (s *Service) Restore(snap *Snapshot) error {
	if snap == nil {
		return ErrInvalidParams
	}
	for _, u := range snap.Users {
		if u.ID <= 0 || u.Username == "" {
			return ErrInvalidParams
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.usersByID = make(map[int64]*User, len(snap.Users))
	s.usersByName = make(map[string]*User, len(snap.Users))
	s.perms = make(map[int64]map[int64]CompanyPermission)
	s.sessions = make(map[string]int64)

	for _, rec := range snap.Users {
		u := &User{ID: rec.ID, Username: rec.Username, Password: rec.Password, IsAdmin: rec.IsAdmin}
		s.usersByID[u.ID] = u
		s.usersByName[u.Username] = u
	}

	for _, rec := range snap.Permissions {
		u, ok := s.usersByID[rec.UserID]
		if !ok || u.IsAdmin {
			continue
		}
		s.setPermissionLocked(rec.UserID, rec.CompanyID, CompanyPermission{CanRead: rec.CanRead, CanWrite: rec.CanWrite})
	}

	return nil
}
