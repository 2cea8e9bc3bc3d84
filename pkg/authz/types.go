package authz

// BootstrapAdminID is the id of the seeded administrator account. The
// bootstrap admin can never be deleted.
const BootstrapAdminID int64 = 1

// User is an identity record. Passwords are stored as opaque strings and
// never serialized.
type User struct {
	ID       int64  `json:"userId"`
	Username string `json:"username"`
	Password string `json:"-"`
	IsAdmin  bool   `json:"isAdmin"`
}

// CompanyPermission is the read/write flag pair attached to a
// (userID, companyID) key in the permission matrix.
type CompanyPermission struct {
	CanRead  bool `json:"canRead"`
	CanWrite bool `json:"canWrite"`
}

// empty reports whether the entry carries no access at all. Empty entries
// are pruned from the matrix.
func (p CompanyPermission) empty() bool {
	return !p.CanRead && !p.CanWrite
}

// PermissionState is the resolved state of a single matrix entry after a
// grant or revoke.
type PermissionState struct {
	TargetUserID int64 `json:"targetUserId"`
	CompanyID    int64 `json:"companyId"`
	CanRead      bool  `json:"canRead"`
	CanWrite     bool  `json:"canWrite"`
}

// CompanyGrant is one company's permission pair, as listed per user.
type CompanyGrant struct {
	CompanyID int64 `json:"companyId"`
	CanRead   bool  `json:"canRead"`
	CanWrite  bool  `json:"canWrite"`
}

// UserSummary is the admin-facing view of a user: identity plus resolved
// grants. Admin users always carry an empty grant list (their access is
// implicit and total).
type UserSummary struct {
	UserID    int64          `json:"userId"`
	Username  string         `json:"username"`
	IsAdmin   bool           `json:"isAdmin"`
	Companies []CompanyGrant `json:"companies"`
}

// UserPermissions is one row of the permission listing: a non-admin user and
// every company they can touch.
type UserPermissions struct {
	UserID    int64          `json:"userId"`
	Username  string         `json:"username"`
	Companies []CompanyGrant `json:"companies"`
}

// Identity is the resolved caller of a request: the output of token
// validation and the implicit first argument of every admin operation.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Profile is returned by WhoAmI. Companies holds every company id the user
// can read or write; admins get an empty list because their access is
// universal rather than enumerable.
type Profile struct {
	UserID    int64   `json:"userId"`
	Username  string  `json:"username"`
	IsAdmin   bool    `json:"isAdmin"`
	Companies []int64 `json:"companies"`
}

// SeedUser describes one bootstrap account. Companies lists company ids the
// user is granted read+write on at startup; ignored for admins.
type SeedUser struct {
	ID        int64
	Username  string
	Password  string
	IsAdmin   bool
	Companies []int64
}

// DefaultSeed returns the bootstrap accounts the original deployment ships
// with: one admin and two finance users scoped to their own company.
func DefaultSeed() []SeedUser {
	return []SeedUser{
		{ID: 1, Username: "admin", Password: "admin123", IsAdmin: true},
		{ID: 2, Username: "finance_a", Password: "finance123", Companies: []int64{1}},
		{ID: 3, Username: "finance_b", Password: "finance123", Companies: []int64{2}},
	}
}
