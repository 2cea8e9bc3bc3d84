// Package middleware provides the bearer-token authentication middleware
// and the admin gate used by the API layer.
//
// # Overview
//
// AuthMiddleware extracts the token from the Authorization header
// ("Bearer <token>"), resolves it through the authorization service, and
// stores the caller's Identity in the request context. Handlers read it
// back with IdentityFromRequest.
//
// RequireAdmin wraps admin-only routes; it rejects non-admin callers
// before the handler runs.
package middleware
