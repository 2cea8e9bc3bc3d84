package api

import (
	"fmt"
	"net/http"

	"github.com/finvia/reportd/pkg/audit"
	"github.com/finvia/reportd/pkg/finance"
	"github.com/finvia/reportd/pkg/httputil"
	"github.com/finvia/reportd/pkg/middleware"
)

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.finance.ListCompanies(r.Context())
	if err != nil {
		s.writeFinanceError(w, r, err, false)
		return
	}
	httputil.WriteOK(w, map[string]interface{}{"companies": companies})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	companyID, err := httputil.ParseQueryInt64(r, "company_id", 0)
	if err != nil {
		httputil.WriteFail(w, CodeInvalidCompanyID, "invalid_company_id")
		return
	}

	projects, err := s.finance.ListProjects(r.Context(), companyID)
	if err != nil {
		s.writeFinanceError(w, r, err, false)
		return
	}
	httputil.WriteOK(w, map[string]interface{}{"projects": projects})
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var req createCompanyRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	affected, err := s.finance.CreateCompany(r.Context(), req.ID, req.Name)
	if err != nil {
		s.writeFinanceError(w, r, err, true)
		return
	}

	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionCompanyCreate,
		Target:    fmt.Sprintf("company:%d", req.ID),
		Detail:    req.Name,
	})
	httputil.WriteOK(w, map[string]interface{}{"affected": affected})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var req createProjectRequest
	if !httputil.ParseJSONOrError(w, r, &req, CodeInvalidJSON) {
		return
	}

	affected, err := s.finance.CreateProject(r.Context(), req.ID, req.CompanyID, req.Name)
	if err != nil {
		s.writeFinanceError(w, r, err, true)
		return
	}

	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionProjectCreate,
		Target:    fmt.Sprintf("project:%d company:%d", req.ID, req.CompanyID),
		Detail:    req.Name,
	})
	httputil.WriteOK(w, map[string]interface{}{"affected": affected})
}

func (s *Server) upsertCostBenefit(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var entry finance.CostBenefitEntry
	if !httputil.ParseJSONOrError(w, r, &entry, CodeInvalidJSON) {
		return
	}
	if !s.requireCompanyWrite(w, r, entry.CompanyID) {
		return
	}

	affected, err := s.finance.UpsertCostBenefit(r.Context(), entry)
	if err != nil {
		s.writeFinanceError(w, r, err, true)
		return
	}

	s.reports.Purge()
	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionCostBenefitUpsert,
		Target:    fmt.Sprintf("project:%d month:%s", entry.ProjectID, entry.Month),
	})
	httputil.WriteOK(w, map[string]interface{}{"affected": affected})
}

func (s *Server) listCostBenefit(w http.ResponseWriter, r *http.Request) {
	companyID, dateFrom, dateTo, ok := companyRangeParams(w, r)
	if !ok {
		return
	}
	if !s.requireCompanyRead(w, r, companyID) {
		return
	}

	entries, err := s.finance.ListCostBenefit(r.Context(), companyID, dateFrom, dateTo)
	if err != nil {
		s.writeFinanceError(w, r, err, false)
		return
	}
	httputil.WriteOK(w, map[string]interface{}{"rows": entries})
}

func (s *Server) createApAccrual(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var line finance.ApAccrual
	if !httputil.ParseJSONOrError(w, r, &line, CodeInvalidJSON) {
		return
	}
	if !s.requireCompanyWrite(w, r, line.CompanyID) {
		return
	}

	affected, err := s.finance.CreateApAccrual(r.Context(), line)
	if err != nil {
		s.writeFinanceError(w, r, err, true)
		return
	}

	s.reports.Purge()
	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionApAccrualCreate,
		Target:    fmt.Sprintf("project:%d vendor:%s", line.ProjectID, line.VendorName),
	})
	httputil.WriteOK(w, map[string]interface{}{"affected": affected})
}

func (s *Server) createApPayment(w http.ResponseWriter, r *http.Request) {
	operator := middleware.IdentityFromRequest(r)

	var line finance.ApPayment
	if !httputil.ParseJSONOrError(w, r, &line, CodeInvalidJSON) {
		return
	}
	if !s.requireCompanyWrite(w, r, line.CompanyID) {
		return
	}

	affected, err := s.finance.CreateApPayment(r.Context(), line)
	if err != nil {
		s.writeFinanceError(w, r, err, true)
		return
	}

	s.reports.Purge()
	s.recordAudit(r.Context(), audit.Event{
		ActorID:   operator.UserID,
		ActorName: operator.Username,
		Action:    audit.ActionApPaymentCreate,
		Target:    fmt.Sprintf("project:%d vendor:%s", line.ProjectID, line.VendorName),
	})
	httputil.WriteOK(w, map[string]interface{}{"affected": affected})
}

func (s *Server) listApAccrual(w http.ResponseWriter, r *http.Request) {
	companyID, dateFrom, dateTo, ok := companyRangeParams(w, r)
	if !ok {
		return
	}
	if !s.requireCompanyRead(w, r, companyID) {
		return
	}

	lines, err := s.finance.ListApAccrual(r.Context(), companyID, dateFrom, dateTo)
	if err != nil {
		s.writeFinanceError(w, r, err, false)
		return
	}
	httputil.WriteOK(w, map[string]interface{}{"rows": lines})
}

func (s *Server) listApPayment(w http.ResponseWriter, r *http.Request) {
	companyID, dateFrom, dateTo, ok := companyRangeParams(w, r)
	if !ok {
		return
	}
	if !s.requireCompanyRead(w, r, companyID) {
		return
	}

	lines, err := s.finance.ListApPayment(r.Context(), companyID, dateFrom, dateTo)
	if err != nil {
		s.writeFinanceError(w, r, err, false)
		return
	}
	httputil.WriteOK(w, map[string]interface{}{"rows": lines})
}
