package api

import (
	"net/http"
	"strconv"

	"github.com/finvia/reportd/pkg/httputil"
)

// companyRangeParams pulls the company_id, date_from, and date_to query
// parameters every report and range listing takes. Missing parameters fail
// with missing_params; a non-numeric company id fails with
// invalid_company_id. Date format validation stays in the services.
func companyRangeParams(w http.ResponseWriter, r *http.Request) (companyID int64, dateFrom, dateTo string, ok bool) {
	q := r.URL.Query()
	companyStr := q.Get("company_id")
	dateFrom = q.Get("date_from")
	dateTo = q.Get("date_to")

	if companyStr == "" || dateFrom == "" || dateTo == "" {
		httputil.WriteFail(w, CodeMissingParams, "missing_params")
		return 0, "", "", false
	}

	companyID, err := strconv.ParseInt(companyStr, 10, 64)
	if err != nil {
		httputil.WriteFail(w, CodeInvalidCompanyID, "invalid_company_id")
		return 0, "", "", false
	}
	return companyID, dateFrom, dateTo, true
}

func (s *Server) costBenefitReport(w http.ResponseWriter, r *http.Request) {
	companyID, dateFrom, dateTo, ok := companyRangeParams(w, r)
	if !ok {
		return
	}
	if !s.requireCompanyRead(w, r, companyID) {
		return
	}

	report, err := s.reports.CostBenefit(r.Context(), companyID, dateFrom, dateTo)
	if err != nil {
		s.writeReportError(w, r, err)
		return
	}
	httputil.WriteOK(w, report)
}

func (s *Server) apSummaryReport(w http.ResponseWriter, r *http.Request) {
	companyID, dateFrom, dateTo, ok := companyRangeParams(w, r)
	if !ok {
		return
	}
	if !s.requireCompanyRead(w, r, companyID) {
		return
	}

	report, err := s.reports.ApSummary(r.Context(), companyID, dateFrom, dateTo)
	if err != nil {
		s.writeReportError(w, r, err)
		return
	}
	httputil.WriteOK(w, report)
}
