// Package authz implements the authorization and permission core of the
// finance reporting backend: user identity, session tokens, and the
// per-user per-company read/write permission matrix.
//
// # Overview
//
// Three cooperating structures live behind a single Service value:
//
//   - the identity store: user records indexed by id and by username
//   - the permission matrix: userID -> companyID -> {canRead, canWrite}
//   - the session table: opaque token -> userID
//
// All three share one RWMutex; every operation is a fast in-memory
// computation, so the lock is never held across I/O. DeleteUser is the one
// cross-structure transaction: it removes the user from both indices, purges
// the user's matrix entries, and invalidates every session pointing at the
// user, all under the write lock.
//
// # Permission semantics
//
// Write implies read. Granting write raises read; revoking read clears
// write. An entry whose flags are both false is pruned, never stored.
// Admin users bypass the matrix entirely and never appear in it.
//
// # Usage
//
//	svc := authz.NewService(authz.DefaultSeed())
//	login, err := svc.Login("finance_a", "finance123")
//	ident, ok := svc.ValidateToken(login.Token)
//	if ok && svc.CanAccessCompany(ident.UserID, companyID) {
//		// serve company-scoped data
//	}
//
// Errors are sentinel values (ErrForbidden, ErrInvalidParams, ...) that
// callers match with errors.Is; the HTTP layer maps each to a stable wire
// code.
//
// # Related Packages
//
//   - pkg/middleware: bearer-token extraction and identity injection
//   - pkg/storage: durable snapshot store for users and permissions
package authz
