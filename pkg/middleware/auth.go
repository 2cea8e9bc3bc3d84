package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/finvia/reportd/pkg/authz"
	"github.com/finvia/reportd/pkg/contextkeys"
	"github.com/finvia/reportd/pkg/httputil"
)

// Error codes preserved from the original wire contract
const (
	CodeForbidden             = 30002
	CodeMissingOrInvalidToken = 30005
	CodeInvalidToken          = 30006
)

// TokenValidator resolves a session token to the caller's identity
type TokenValidator interface {
	ValidateToken(token string) (*authz.Identity, bool)
}

// AuthMiddleware provides bearer-token authentication
type AuthMiddleware struct {
	validator TokenValidator
	tokens    *authz.TokenGenerator
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, tokens: authz.NewTokenGenerator()}
}

// Handler wraps an HTTP handler with bearer-token authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeMissingOrInvalidToken, "missing_or_invalid_token")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeMissingOrInvalidToken, "missing_or_invalid_token")
			return
		}

		// A token that is not even shaped like one of ours never reaches
		// the session table.
		if err := m.tokens.ValidateTokenFormat(parts[1]); err != nil {
			httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeInvalidToken, "invalid_token")
			return
		}

		ident, ok := m.validator.ValidateToken(parts[1])
		if !ok {
			httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeInvalidToken, "invalid_token")
			return
		}

		ctx := contextkeys.WithIdentity(r.Context(), ident)
		ctx = contextkeys.WithUserID(ctx, strconv.FormatInt(ident.UserID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromRequest extracts the authenticated identity from the request
// context. Returns nil when the request did not pass AuthMiddleware.
func IdentityFromRequest(r *http.Request) *authz.Identity {
	v := r.Context().Value(contextkeys.IdentityKey)
	if v == nil {
		return nil
	}
	ident, ok := v.(*authz.Identity)
	if !ok {
		return nil
	}
	return ident
}

// RequireAdmin rejects non-admin callers before the handler runs
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFromRequest(r)
		if ident == nil {
			httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeMissingOrInvalidToken, "missing_or_invalid_token")
			return
		}
		if !ident.IsAdmin {
			httputil.WriteFailStatus(w, http.StatusForbidden, CodeForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
