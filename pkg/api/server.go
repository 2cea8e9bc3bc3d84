package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/finvia/reportd/pkg/audit"
	"github.com/finvia/reportd/pkg/authz"
	"github.com/finvia/reportd/pkg/finance"
	"github.com/finvia/reportd/pkg/httputil"
	"github.com/finvia/reportd/pkg/middleware"
	"github.com/finvia/reportd/pkg/observability"
	"github.com/finvia/reportd/pkg/reports"
)

// Options wires the server's collaborators. Authz, Finance, and Reports
// are required; the rest have working defaults.
type Options struct {
	Logger  *observability.Logger
	Metrics *observability.Metrics
	Authz   *authz.Service
	Finance *finance.Service
	Reports *reports.Service
	Audit   audit.Recorder

	MaxBodyBytes int64
	EnableOTel   bool
}

// Server is the HTTP API
type Server struct {
	router   *mux.Router
	logger   *observability.Logger
	metrics  *observability.Metrics
	authz    *authz.Service
	finance  *finance.Service
	reports  *reports.Service
	recorder audit.Recorder
	tokens   *authz.TokenGenerator

	maxBodyBytes int64
	enableOTel   bool
}

// NewServer creates the API server and registers all routes
func NewServer(opts Options) *Server {
	if opts.Audit == nil {
		opts.Audit = audit.NopRecorder{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		router:       mux.NewRouter(),
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		authz:        opts.Authz,
		finance:      opts.Finance,
		reports:      opts.Reports,
		recorder:     opts.Audit,
		tokens:       authz.NewTokenGenerator(),
		maxBodyBytes: opts.MaxBodyBytes,
		enableOTel:   opts.EnableOTel,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.login).Methods("POST")

	authMW := middleware.NewAuthMiddleware(s.authz)
	authed := api.PathPrefix("/").Subrouter()
	authed.Use(authMW.Handler)

	authed.HandleFunc("/auth/whoami", s.whoami).Methods("GET")

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/permissions", s.listPermissions).Methods("GET")
	admin.HandleFunc("/permissions/company", s.setCompanyAccess).Methods("POST")
	admin.HandleFunc("/permissions/grant", s.grantPermission).Methods("POST")
	admin.HandleFunc("/permissions/revoke", s.revokePermission).Methods("POST")
	admin.HandleFunc("/users", s.listUsers).Methods("GET")
	admin.HandleFunc("/users", s.createUser).Methods("POST")
	admin.HandleFunc("/users/{id:[0-9]+}", s.deleteUser).Methods("DELETE")
	admin.HandleFunc("/users/{id:[0-9]+}/password", s.resetPassword).Methods("POST")

	authed.HandleFunc("/reports/cost_benefit", s.costBenefitReport).Methods("GET")
	authed.HandleFunc("/reports/ap_summary", s.apSummaryReport).Methods("GET")

	authed.HandleFunc("/finance/companies", s.listCompanies).Methods("GET")
	authed.Handle("/finance/companies", middleware.RequireAdmin(http.HandlerFunc(s.createCompany))).Methods("POST")
	authed.HandleFunc("/finance/projects", s.listProjects).Methods("GET")
	authed.Handle("/finance/projects", middleware.RequireAdmin(http.HandlerFunc(s.createProject))).Methods("POST")
	authed.HandleFunc("/finance/cost_benefit", s.listCostBenefit).Methods("GET")
	authed.HandleFunc("/finance/cost_benefit", s.upsertCostBenefit).Methods("POST")
	authed.HandleFunc("/finance/ap_accrual", s.listApAccrual).Methods("GET")
	authed.HandleFunc("/finance/ap_accrual", s.createApAccrual).Methods("POST")
	authed.HandleFunc("/finance/ap_payment", s.listApPayment).Methods("GET")
	authed.HandleFunc("/finance/ap_payment", s.createApPayment).Methods("POST")
}

// Handler returns the router wrapped in the ambient middleware chain
func (s *Server) Handler() http.Handler {
	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(CodeInternal),
		httputil.MaxBytesMiddleware(s.maxBodyBytes),
	}
	if s.metrics != nil {
		chain = append(chain, observability.HTTPMetricsMiddleware(s.metrics))
	}

	var h http.Handler = httputil.Chain(chain...)(s.router)
	if s.enableOTel {
		h = otelhttp.NewHandler(h, "reportd.api")
	}
	return h
}

// recordAudit appends an audit event. Failures are logged, never fatal.
func (s *Server) recordAudit(ctx context.Context, e audit.Event) {
	if err := s.recorder.Record(ctx, e); err != nil {
		observability.FromContext(ctx).WithError(err).Warn("audit record failed")
	}
}

func (s *Server) recordLogin(success bool) {
	if s.metrics == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
	}
	s.metrics.LoginsTotal.WithLabelValues(status).Inc()
}

func (s *Server) recordDecision(operation string, allowed bool) {
	if s.metrics == nil {
		return
	}
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	s.metrics.AuthzDecisionsTotal.WithLabelValues(operation, decision).Inc()
}

// requireCompanyRead gates a company-scoped read on the caller's matrix
func (s *Server) requireCompanyRead(w http.ResponseWriter, r *http.Request, companyID int64) bool {
	ident := middleware.IdentityFromRequest(r)
	if ident == nil {
		httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeMissingOrInvalidToken, "missing_or_invalid_token")
		return false
	}
	if !s.authz.CanAccessCompany(ident.UserID, companyID) {
		s.recordDecision("company_read", false)
		httputil.WriteFailStatus(w, http.StatusForbidden, CodeForbidden, "forbidden")
		return false
	}
	s.recordDecision("company_read", true)
	return true
}

// requireCompanyWrite gates a company-scoped mutation on the caller's matrix
func (s *Server) requireCompanyWrite(w http.ResponseWriter, r *http.Request, companyID int64) bool {
	ident := middleware.IdentityFromRequest(r)
	if ident == nil {
		httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeMissingOrInvalidToken, "missing_or_invalid_token")
		return false
	}
	if !s.authz.CanModifyCompany(ident.UserID, companyID) {
		s.recordDecision("company_write", false)
		httputil.WriteFailStatus(w, http.StatusForbidden, CodeForbidden, "forbidden")
		return false
	}
	s.recordDecision("company_write", true)
	return true
}

func writeAuthzError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authz.ErrInvalidCredentials):
		httputil.WriteFail(w, CodeInvalidCredentials, "invalid_username_or_password")
	case errors.Is(err, authz.ErrInvalidToken):
		httputil.WriteFailStatus(w, http.StatusUnauthorized, CodeInvalidToken, "invalid_token")
	case errors.Is(err, authz.ErrForbidden):
		httputil.WriteFailStatus(w, http.StatusForbidden, CodeForbidden, "forbidden")
	case errors.Is(err, authz.ErrInvalidParams):
		httputil.WriteFail(w, CodeInvalidParams, "invalid_params")
	case errors.Is(err, authz.ErrNotFound):
		httputil.WriteFail(w, CodeUserNotFound, "target_user_not_found")
	case errors.Is(err, authz.ErrAlreadyExists):
		httputil.WriteFail(w, CodeUserAlreadyExists, "user_already_exists")
	default:
		httputil.WriteInternalError(w, CodeInternal, err)
	}
}

func (s *Server) writeFinanceError(w http.ResponseWriter, r *http.Request, err error, isWrite bool) {
	switch {
	case errors.Is(err, finance.ErrInvalidParams):
		httputil.WriteFail(w, CodeInvalidParams, "invalid_params")
	case errors.Is(err, finance.ErrInvalidCompanyID):
		httputil.WriteFail(w, CodeInvalidCompanyID, "invalid_company_id")
	default:
		observability.FromContext(r.Context()).WithError(err).Error("finance operation failed")
		if isWrite {
			httputil.WriteFail(w, CodeDBWriteFailed, "db_write_failed")
		} else {
			httputil.WriteFail(w, CodeDBQueryFailed, "db_query_failed")
		}
	}
}

func (s *Server) writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reports.ErrInvalidCompanyID):
		httputil.WriteFail(w, CodeInvalidCompanyID, "invalid_company_id")
	case errors.Is(err, reports.ErrInvalidDate):
		httputil.WriteFail(w, CodeInvalidDate, "invalid_date")
	default:
		observability.FromContext(r.Context()).WithError(err).Error("report query failed")
		httputil.WriteFail(w, CodeDBQueryFailed, "db_query_failed")
	}
}
