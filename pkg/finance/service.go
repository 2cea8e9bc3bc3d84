package finance

import (
	"context"
	"errors"
)

// Sentinel validation errors. The API layer maps them to stable wire codes.
var (
	ErrInvalidParams    = errors.New("invalid params")
	ErrInvalidCompanyID = errors.New("invalid company id")
)

// validDate reports whether s is a well-formed YYYY-MM-DD string. Months
// use the same format with the day fixed by the caller's convention.
func validDate(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			if s[i] != '-' {
				return false
			}
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Service validates finance inputs and delegates to the repository
type Service struct {
	repo *Repo
}

// NewService creates a finance service
func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// ListCompanies returns all companies
func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.repo.ListCompanies(ctx)
}

// ListProjects returns projects, filtered by company when companyID > 0.
// A negative companyID is rejected.
func (s *Service) ListProjects(ctx context.Context, companyID int64) ([]Project, error) {
	if companyID < 0 {
		return nil, ErrInvalidCompanyID
	}
	return s.repo.ListProjects(ctx, companyID)
}

// CreateCompany registers a company under an explicit id
func (s *Service) CreateCompany(ctx context.Context, id int64, name string) (int64, error) {
	if id <= 0 || name == "" {
		return 0, ErrInvalidParams
	}
	return s.repo.CreateCompany(ctx, id, name)
}

// CreateProject registers a project under an explicit id
func (s *Service) CreateProject(ctx context.Context, id, companyID int64, name string) (int64, error) {
	if id <= 0 || companyID <= 0 || name == "" {
		return 0, ErrInvalidParams
	}
	return s.repo.CreateProject(ctx, id, companyID, name)
}

// UpsertCostBenefit records one project-month of figures, replacing any
// previous entry for the same project and month
func (s *Service) UpsertCostBenefit(ctx context.Context, e CostBenefitEntry) (int64, error) {
	if e.CompanyID <= 0 || e.ProjectID <= 0 || !validDate(e.Month) {
		return 0, ErrInvalidParams
	}
	return s.repo.UpsertCostBenefit(ctx, e)
}

// ListCostBenefit returns raw entries for a company and month range
func (s *Service) ListCostBenefit(ctx context.Context, companyID int64, dateFrom, dateTo string) ([]CostBenefitEntry, error) {
	if companyID <= 0 || !validDate(dateFrom) || !validDate(dateTo) {
		return nil, ErrInvalidParams
	}
	return s.repo.ListCostBenefit(ctx, companyID, dateFrom, dateTo)
}

// CreateApAccrual appends one accrual line
func (s *Service) CreateApAccrual(ctx context.Context, a ApAccrual) (int64, error) {
	if a.CompanyID <= 0 || a.ProjectID <= 0 || a.VendorName == "" || a.BizType == "" || !validDate(a.BizDate) {
		return 0, ErrInvalidParams
	}
	return s.repo.CreateApAccrual(ctx, a)
}

// CreateApPayment appends one payment line
func (s *Service) CreateApPayment(ctx context.Context, p ApPayment) (int64, error) {
	if p.CompanyID <= 0 || p.ProjectID <= 0 || p.VendorName == "" || p.BizType == "" || !validDate(p.PayDate) {
		return 0, ErrInvalidParams
	}
	return s.repo.CreateApPayment(ctx, p)
}

// ListApAccrual returns accrual lines for a company and date range
func (s *Service) ListApAccrual(ctx context.Context, companyID int64, dateFrom, dateTo string) ([]ApAccrual, error) {
	if companyID <= 0 || !validDate(dateFrom) || !validDate(dateTo) {
		return nil, ErrInvalidParams
	}
	return s.repo.ListApAccrual(ctx, companyID, dateFrom, dateTo)
}

// ListApPayment returns payment lines for a company and date range
func (s *Service) ListApPayment(ctx context.Context, companyID int64, dateFrom, dateTo string) ([]ApPayment, error) {
	if companyID <= 0 || !validDate(dateFrom) || !validDate(dateTo) {
		return nil, ErrInvalidParams
	}
	return s.repo.ListApPayment(ctx, companyID, dateFrom, dateTo)
}
