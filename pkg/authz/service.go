package authz

import (
	"crypto/subtle"
	"fmt"
	"sort"
	"sync"
)

// Service is the authorization core: identity store, permission matrix, and
// session table behind one lock. Construct it explicitly with NewService and
// pass it by reference to whatever composes the HTTP layer; there is no
// process-wide singleton.
type Service struct {
	mu sync.RWMutex

	usersByID   map[int64]*User
	usersByName map[string]*User

	// perms holds the permission matrix for non-admin users only. Entries
	// with both flags false are never stored.
	perms map[int64]map[int64]CompanyPermission

	// sessions maps issued tokens to user ids. Entries are removed only by
	// DeleteUser's cascade; there is no expiry.
	sessions map[string]int64

	tokens *TokenGenerator
}

// NewService creates a Service seeded with the given bootstrap accounts.
// Seed users are inserted verbatim; company lists grant read+write.
func NewService(seed []SeedUser) *Service {
	s := &Service{
		usersByID:   make(map[int64]*User),
		usersByName: make(map[string]*User),
		perms:       make(map[int64]map[int64]CompanyPermission),
		sessions:    make(map[string]int64),
		tokens:      NewTokenGenerator(),
	}

	for _, su := range seed {
		u := &User{ID: su.ID, Username: su.Username, Password: su.Password, IsAdmin: su.IsAdmin}
		s.usersByID[u.ID] = u
		s.usersByName[u.Username] = u
		if u.IsAdmin {
			continue
		}
		for _, companyID := range su.Companies {
			s.setPermissionLocked(u.ID, companyID, CompanyPermission{CanRead: true, CanWrite: true})
		}
	}

	return s
}

// Login validates the credentials and issues a fresh session token. Unknown
// usernames and wrong passwords both fail with ErrInvalidCredentials.
func (s *Service) Login(username, password string) (*LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByName[username]
	if !ok || subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.sessions[token] = u.ID

	return &LoginResult{Token: token, UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}, nil
}

// ValidateToken resolves a token to the caller's identity. Resolution fails
// if the token was never issued or the user has since been deleted. IsAdmin
// is read from the identity store at validation time, not cached at
// issuance.
func (s *Service) ValidateToken(token string) (*Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	u, ok := s.usersByID[userID]
	if !ok {
		return nil, false
	}

	return &Identity{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}, true
}

// WhoAmI returns the caller's profile. For non-admins, Companies lists every
// company id with read or write access; admins get an empty list.
func (s *Service) WhoAmI(userID int64) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return nil, ErrInvalidToken
	}

	p := &Profile{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin, Companies: []int64{}}
	if !u.IsAdmin {
		for companyID, perm := range s.perms[u.ID] {
			if perm.CanRead || perm.CanWrite {
				p.Companies = append(p.Companies, companyID)
			}
		}
		sort.Slice(p.Companies, func(i, j int) bool { return p.Companies[i] < p.Companies[j] })
	}

	return p, nil
}

// CanAccessCompany reports whether the user may read company data. Admins
// always may; non-admins need a matrix entry with read or write set.
// Unknown users have no access.
func (s *Service) CanAccessCompany(userID, companyID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return false
	}
	if u.IsAdmin {
		return true
	}

	perm, ok := s.perms[userID][companyID]
	return ok && (perm.CanRead || perm.CanWrite)
}

// CanModifyCompany reports whether the user may write company data. Admins
// always may; non-admins need canWrite.
func (s *Service) CanModifyCompany(userID, companyID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[userID]
	if !ok {
		return false
	}
	if u.IsAdmin {
		return true
	}

	perm, ok := s.perms[userID][companyID]
	return ok && perm.CanWrite
}

// GrantPermission raises flags on the (target, company) matrix entry.
// Granting write implies read. Admin targets are not editable: their access
// is implicit and total.
func (s *Service) GrantPermission(operator Identity, targetUserID, companyID int64, grantRead, grantWrite bool) (*PermissionState, error) {
	if !operator.IsAdmin {
		return nil, ErrForbidden
	}
	if targetUserID <= 0 || companyID <= 0 {
		return nil, ErrInvalidParams
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[targetUserID]
	if !ok {
		return nil, ErrNotFound
	}
	if u.IsAdmin {
		return nil, fmt.Errorf("%w: cannot edit admin permissions", ErrInvalidParams)
	}

	perm := s.perms[targetUserID][companyID]
	if grantRead {
		perm.CanRead = true
	}
	if grantWrite {
		perm.CanWrite = true
		perm.CanRead = true
	}
	s.setPermissionLocked(targetUserID, companyID, perm)

	return &PermissionState{TargetUserID: targetUserID, CompanyID: companyID, CanRead: perm.CanRead, CanWrite: perm.CanWrite}, nil
}

// RevokePermission clears flags on the (target, company) matrix entry.
// Revoking read clears write as well; revoking an absent entry succeeds and
// reports both flags false.
func (s *Service) RevokePermission(operator Identity, targetUserID, companyID int64, revokeRead, revokeWrite bool) (*PermissionState, error) {
	if !operator.IsAdmin {
		return nil, ErrForbidden
	}
	if targetUserID <= 0 || companyID <= 0 {
		return nil, ErrInvalidParams
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[targetUserID]
	if !ok {
		return nil, ErrNotFound
	}
	if u.IsAdmin {
		return nil, fmt.Errorf("%w: cannot edit admin permissions", ErrInvalidParams)
	}

	state := &PermissionState{TargetUserID: targetUserID, CompanyID: companyID}

	perm, ok := s.perms[targetUserID][companyID]
	if !ok {
		return state, nil
	}

	if revokeRead {
		perm.CanRead = false
		perm.CanWrite = false
	}
	if revokeWrite {
		perm.CanWrite = false
	}
	s.setPermissionLocked(targetUserID, companyID, perm)

	state.CanRead = perm.CanRead
	state.CanWrite = perm.CanWrite
	return state, nil
}

// SetCompanyAccess is the coarse on/off toggle: allow grants read+write,
// deny revokes both.
func (s *Service) SetCompanyAccess(operator Identity, targetUserID, companyID int64, allow bool) (*PermissionState, error) {
	if allow {
		return s.GrantPermission(operator, targetUserID, companyID, true, true)
	}
	return s.RevokePermission(operator, targetUserID, companyID, true, true)
}

// ListPermissions returns every non-admin user with their company grants.
// Admin users are excluded: they never hold matrix entries. Entries with
// both flags false are skipped; the matrix should never hold them.
func (s *Service) ListPermissions(operator Identity) ([]UserPermissions, error) {
	if !operator.IsAdmin {
		return nil, ErrForbidden
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UserPermissions, 0, len(s.usersByID))
	for _, u := range s.sortedUsersLocked() {
		if u.IsAdmin {
			continue
		}
		out = append(out, UserPermissions{
			UserID:    u.ID,
			Username:  u.Username,
			Companies: s.grantsLocked(u.ID),
		})
	}

	return out, nil
}

// ListUsers returns every user with identity flags; non-admins also carry
// their resolved grants.
func (s *Service) ListUsers(operator Identity) ([]UserSummary, error) {
	if !operator.IsAdmin {
		return nil, ErrForbidden
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UserSummary, 0, len(s.usersByID))
	for _, u := range s.sortedUsersLocked() {
		summary := UserSummary{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin, Companies: []CompanyGrant{}}
		if !u.IsAdmin {
			summary.Companies = s.grantsLocked(u.ID)
		}
		out = append(out, summary)
	}

	return out, nil
}

// CreateUser inserts a new user into both indices.
func (s *Service) CreateUser(operator Identity, userID int64, username, password string, isAdmin bool) (*User, error) {
	if !operator.IsAdmin {
		return nil, ErrForbidden
	}
	if userID <= 0 || username == "" || password == "" {
		return nil, ErrInvalidParams
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByID[userID]; ok {
		return nil, ErrAlreadyExists
	}
	if _, ok := s.usersByName[username]; ok {
		return nil, ErrAlreadyExists
	}

	u := &User{ID: userID, Username: username, Password: password, IsAdmin: isAdmin}
	s.usersByID[u.ID] = u
	s.usersByName[u.Username] = u

	return &User{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}, nil
}

// DeleteUser removes a user and cascades: permission matrix entries are
// purged and every session issued to the user is invalidated, atomically
// with respect to concurrent readers. The bootstrap admin and admin users
// in general cannot be deleted through this path.
func (s *Service) DeleteUser(operator Identity, targetUserID int64) error {
	if !operator.IsAdmin {
		return ErrForbidden
	}
	if targetUserID <= 0 || targetUserID == BootstrapAdminID {
		return ErrInvalidParams
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[targetUserID]
	if !ok {
		return ErrNotFound
	}
	if u.IsAdmin {
		return fmt.Errorf("%w: cannot delete admin", ErrInvalidParams)
	}

	delete(s.usersByName, u.Username)
	delete(s.usersByID, targetUserID)
	delete(s.perms, targetUserID)

	for token, userID := range s.sessions {
		if userID == targetUserID {
			delete(s.sessions, token)
		}
	}

	return nil
}

// ResetPassword updates the target's password in place. Both indices share
// the same User value, so the username index stays consistent.
func (s *Service) ResetPassword(operator Identity, targetUserID int64, newPassword string) error {
	if !operator.IsAdmin {
		return ErrForbidden
	}
	if targetUserID <= 0 || newPassword == "" {
		return ErrInvalidParams
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByID[targetUserID]
	if !ok {
		return ErrNotFound
	}

	u.Password = newPassword
	return nil
}

// SessionCount returns the number of live sessions. Used by the metrics
// refresh job.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// UserCount returns the number of registered users.
func (s *Service) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.usersByID)
}

// setPermissionLocked writes a matrix entry, re-asserting the
// write-implies-read invariant and pruning empty entries. Callers hold the
// write lock.
func (s *Service) setPermissionLocked(userID, companyID int64, perm CompanyPermission) {
	if perm.CanWrite && !perm.CanRead {
		perm.CanRead = true
	}

	if perm.empty() {
		if m, ok := s.perms[userID]; ok {
			delete(m, companyID)
			if len(m) == 0 {
				delete(s.perms, userID)
			}
		}
		return
	}

	m, ok := s.perms[userID]
	if !ok {
		m = make(map[int64]CompanyPermission)
		s.perms[userID] = m
	}
	m[companyID] = perm
}

// grantsLocked returns the user's grants sorted by company id. Callers hold
// at least the read lock.
func (s *Service) grantsLocked(userID int64) []CompanyGrant {
	grants := make([]CompanyGrant, 0, len(s.perms[userID]))
	for companyID, perm := range s.perms[userID] {
		if perm.empty() {
			continue
		}
		grants = append(grants, CompanyGrant{CompanyID: companyID, CanRead: perm.CanRead, CanWrite: perm.CanWrite})
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].CompanyID < grants[j].CompanyID })
	return grants
}

// sortedUsersLocked returns users ordered by id for stable listings.
// Callers hold at least the read lock.
func (s *Service) sortedUsersLocked() []*User {
	users := make([]*User, 0, len(s.usersByID))
	for _, u := range s.usersByID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}
