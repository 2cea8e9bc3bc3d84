package api

import (
	"fmt"
	"net/http"

	"github.com/finvia/reportd/pkg/audit"
	"github.com/finvia/reportd/pkg/httputil"
	"github.com/finvia/reportd/pkg/middleware"
)

func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	users, err := s.authz.ListPermissions(*operator)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	httputil.WriteOK(w, map[string]interface{}{"users": users})
}

func (s *Server) setCompanyAccess(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var req companyAccessRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	state, err := s.authz.SetCompanyAccess(*operator, req.TargetUserID, req.CompanyID, req.Allow)
	if err != nil {
		writeAuthzError(w, err)
		return
	}

	action := audit.ActionPermissionRevoke
	if req.Allow {
		action = audit.ActionPermissionGrant
	}
	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    action,
		Target:    fmt.Sprintf("user:%d company:%d", req.TargetUserID, req.CompanyID),
		Detail:    fmt.Sprintf("allow=%t", req.Allow),
	})
	httputil.WriteOK(w, state)
}

func (s *Server) grantPermission(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var req permissionChangeRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	state, err := s.authz.GrantPermission(*operator, req.TargetUserID, req.CompanyID, req.Read, req.Write)
	if err != nil {
		writeAuthzError(w, err)
		return
	}

	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionPermissionGrant,
		Target:    fmt.Sprintf("user:%d company:%d", req.TargetUserID, req.CompanyID),
		Detail:    fmt.Sprintf("read=%t write=%t", req.Read, req.Write),
	})
	httputil.WriteOK(w, state)
}

func (s *Server) revokePermission(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var req permissionChangeRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	state, err := s.authz.RevokePermission(*operator, req.TargetUserID, req.CompanyID, req.Read, req.Write)
	if err != nil {
		writeAuthzError(w, err)
		return
	}

	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionPermissionRevoke,
		Target:    fmt.Sprintf("user:%d company:%d", req.TargetUserID, req.CompanyID),
		Detail:    fmt.Sprintf("read=%t write=%t", req.Read, req.Write),
	})
	httputil.WriteOK(w, state)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	users, err := s.authz.ListUsers(*operator)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	httputil.WriteOK(w, map[string]interface{}{"users": users})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var req createUserRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	user, err := s.authz.CreateUser(*operator, req.UserID, req.Username, req.Password, req.IsAdmin)
	if err != nil {
		writeAuthzError(w, err)
		return
	}

	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionUserCreate,
		Target:    "user:" + req.Username,
		Detail:    fmt.Sprintf("userId=%d isAdmin=%t", req.UserID, req.IsAdmin),
	})
	httputil.WriteOK(w, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	targetID, ok := httputil.ParsePathInt64OrError(w, r, "id", CodeInvalidParams)
	if !ok {
		return
	}

	if err := s.authz.DeleteUser(*operator, targetID); err != nil {
		writeAuthzError(w, err)
		return
	}

	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionUserDelete,
		Target:    fmt.Sprintf("user:%d", targetID),
	})
	httputil.WriteOK(w, map[string]interface{}{"deleted": targetID})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	targetID, ok := httputil.ParsePathInt64OrError(w, r, "id", CodeInvalidParams)
	if !ok {
		return
	}

	var req resetPasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	if err := s.authz.ResetPassword(*operator, targetID, req.NewPassword); err != nil {
		writeAuthzError(w, err)
		return
	}

	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionPasswordChange,
		Target:    fmt.Sprintf("user:%d", targetID),
	})
	httputil.WriteOK(w, map[string]interface{}{"updated": targetID})
}
