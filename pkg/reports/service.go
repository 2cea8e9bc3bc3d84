package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/finvia/reportd/pkg/observability"
)

// Sentinel validation errors. The API layer maps them to stable wire codes.
var (
	ErrInvalidCompanyID = errors.New("invalid company id")
	ErrInvalidDate      = errors.New("invalid date")
)

// Cache defaults. A zero or negative size disables caching entirely.
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = time.Minute
)

// validDate reports whether s is a well-formed YYYY-MM-DD string
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

// Service validates report inputs, caches results per (company, range),
// and delegates to the repository on a miss
type Service struct {
	repo    *Repo
	cbCache *lru.LRU[string, *CostBenefitReport]
	apCache *lru.LRU[string, *ApSummaryReport]
	metrics *observability.Metrics
}

// NewService creates a report service. Metrics may be nil. Caching is
// disabled when size <= 0.
func NewService(repo *Repo, size int, ttl time.Duration, metrics *observability.Metrics) *Service {
	s := &Service{repo: repo, metrics: metrics}
	if size > 0 {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cbCache = lru.NewLRU[string, *CostBenefitReport](size, nil, ttl)
		s.apCache = lru.NewLRU[string, *ApSummaryReport](size, nil, ttl)
	}
	return s
}

func cacheKey(companyID int64, dateFrom, dateTo string) string {
	return fmt.Sprintf("%d|%s|%s", companyID, dateFrom, dateTo)
}

func (s *Service) recordCache(report string, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.ReportCacheHitsTotal.WithLabelValues(report).Inc()
	} else {
		s.metrics.ReportCacheMissesTotal.WithLabelValues(report).Inc()
	}
}

func validateRange(companyID int64, dateFrom, dateTo string) error {
	if companyID <= 0 {
		return ErrInvalidCompanyID
	}
	if !validDate(dateFrom) || !validDate(dateTo) {
		return ErrInvalidDate
	}
	return nil
}

// CostBenefit returns the cost-benefit report for a company and month range
func (s *Service) CostBenefit(ctx context.Context, companyID int64, dateFrom, dateTo string) (*CostBenefitReport, error) {
	if err := validateRange(companyID, dateFrom, dateTo); err != nil {
		return nil, err
	}

	key := cacheKey(companyID, dateFrom, dateTo)
	if s.cbCache != nil {
		if cached, ok := s.cbCache.Get(key); ok {
			s.recordCache("cost_benefit", true)
			return cached, nil
		}
		s.recordCache("cost_benefit", false)
	}

	rows, err := s.repo.QueryCostBenefit(ctx, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	report := &CostBenefitReport{Rows: rows}
	if s.cbCache != nil {
		s.cbCache.Add(key, report)
	}
	return report, nil
}

// ApSummary returns the accounts-payable summary for a company and date range
func (s *Service) ApSummary(ctx context.Context, companyID int64, dateFrom, dateTo string) (*ApSummaryReport, error) {
	if err := validateRange(companyID, dateFrom, dateTo); err != nil {
		return nil, err
	}

	key := cacheKey(companyID, dateFrom, dateTo)
	if s.apCache != nil {
		if cached, ok := s.apCache.Get(key); ok {
			s.recordCache("ap_summary", true)
			return cached, nil
		}
		s.recordCache("ap_summary", false)
	}

	report, err := s.repo.QueryApSummary(ctx, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	if s.apCache != nil {
		s.apCache.Add(key, report)
	}
	return report, nil
}

// Purge drops every cached report. Called after any finance write so the
// next read reflects the new data.
func (s *Service) Purge() {
	if s.cbCache != nil {
		s.cbCache.Purge()
	}
	if s.apCache != nil {
		s.apCache.Purge()
	}
}
