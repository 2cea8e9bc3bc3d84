package api

import (
	"net/http"

	"github.com/finvia/reportd/pkg/audit"
	"github.com/finvia/reportd/pkg/httputil"
	"github.com/finvia/reportd/pkg/middleware"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	result, err := s.authz.Login(req.Username, req.Password)
	if err != nil {
		s.recordLogin(false)
		s.recordAudit(r.Context(), audit.Event{
			ActorName: req.Username,
			Action:    audit.ActionLoginFailed,
			Target:    "user:" + req.Username,
		})
		writeAuthzError(w, err)
		return
	}

	s.recordLogin(true)
	s.recordAudit(r.Context(), audit.Event{
		ActorID:   result.UserID,
		ActorName: result.Username,
		Action:    audit.ActionLogin,
		Target:    "user:" + result.Username,
		Detail:    "session " + s.tokens.ExtractPrefix(result.Token),
	})
	httputil.WriteOK(w, result)
}

func (s *Server) whoami(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromRequest(r)
	if ident == nil {
		httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeMissingOrInvalidToken, "missing_or_invalid_token")
		return
	}

	profile, err := s.authz.WhoAmI(ident.UserID)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	httputil.WriteOK(w, profile)
}
