package reports

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvia/reportd/pkg/storage"
)

func newTestService(t *testing.T, cacheSize int) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepo(db, storage.DriverSQLite, nil)
	return NewService(repo, cacheSize, time.Minute, nil), mock
}

var costBenefitCols = []string{"company_name", "project_name", "output_value", "tax",
	"material_cost", "machine_cost", "machine_depr_cost", "labor_mgmt_cost",
	"labor_project_cost", "other_cost", "finance_fee", "total_cost",
	"nonprod_income", "nonprod_expense", "profit", "income_tax", "assess_profit", "remark"}

func TestCostBenefitValidation(t *testing.T) {
	svc, _ := newTestService(t, 0)

	_, err := svc.CostBenefit(context.Background(), 0, "2024-01-01", "2024-03-31")
	assert.ErrorIs(t, err, ErrInvalidCompanyID)

	_, err = svc.CostBenefit(context.Background(), 1, "2024-1-1", "2024-03-31")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.ApSummary(context.Background(), -5, "2024-01-01", "2024-03-31")
	assert.ErrorIs(t, err, ErrInvalidCompanyID)

	_, err = svc.ApSummary(context.Background(), 1, "2024-01-01", "March 31")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCostBenefit(t *testing.T) {
	svc, mock := newTestService(t, 0)

	mock.ExpectQuery(`SELECT c\.name, p\.name`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows(costBenefitCols).
			AddRow("Acme Construction", "North Bridge",
				1200.0, 80.0, 300.0, 100.0, 50.0, 60.0, 200.0, 40.0, 10.0,
				780.0, 5.0, 3.0, 422.0, 20.0, 400.0, "q1"))

	report, err := svc.CostBenefit(context.Background(), 1, "2024-01-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, "Acme Construction", row.CompanyName)
	assert.Equal(t, "North Bridge", row.ProjectName)
	assert.Equal(t, 780.0, row.TotalCost)
	assert.Equal(t, 422.0, row.Profit)
	assert.Equal(t, "q1", row.Remark)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCostBenefitEmptyRange(t *testing.T) {
	svc, mock := newTestService(t, 0)

	mock.ExpectQuery(`SELECT c\.name, p\.name`).
		WithArgs(int64(1), "2030-01-01", "2030-01-31").
		WillReturnRows(sqlmock.NewRows(costBenefitCols))

	report, err := svc.CostBenefit(context.Background(), 1, "2030-01-01", "2030-01-31")
	require.NoError(t, err)
	assert.NotNil(t, report.Rows)
	assert.Empty(t, report.Rows)
}

func TestCostBenefitCache(t *testing.T) {
	svc, mock := newTestService(t, 16)

	// Only one query expected; the second call is served from cache.
	mock.ExpectQuery(`SELECT c\.name, p\.name`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows(costBenefitCols).
			AddRow("Acme Construction", "North Bridge",
				1200.0, 80.0, 300.0, 100.0, 50.0, 60.0, 200.0, 40.0, 10.0,
				780.0, 5.0, 3.0, 422.0, 20.0, 400.0, ""))

	first, err := svc.CostBenefit(context.Background(), 1, "2024-01-01", "2024-03-31")
	require.NoError(t, err)

	second, err := svc.CostBenefit(context.Background(), 1, "2024-01-01", "2024-03-31")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())

	// After a purge the next read goes back to the database.
	svc.Purge()
	mock.ExpectQuery(`SELECT c\.name, p\.name`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows(costBenefitCols))

	third, err := svc.CostBenefit(context.Background(), 1, "2024-01-01", "2024-03-31")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApSummary(t *testing.T) {
	svc, mock := newTestService(t, 0)

	accrualCols := []string{"project_id", "project_name", "vendor_name", "biz_type", "accrual_total"}
	paymentCols := []string{"project_id", "vendor_name", "biz_type", "paid_total"}

	mock.ExpectQuery(`FROM ap_accrual a`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows(accrualCols).
			AddRow(10, "North Bridge", "Steel Supply Co", "material", 5000.0).
			AddRow(10, "North Bridge", "CraneWorks", "machine", 1200.0).
			AddRow(11, "Harbor Expansion", "Steel Supply Co", "material", 800.0))

	// The payment for DredgeCo has no accrual line and is dropped.
	mock.ExpectQuery(`FROM ap_payment a`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow(10, "Steel Supply Co", "material", 3000.0).
			AddRow(11, "DredgeCo", "machine", 999.0))

	report, err := svc.ApSummary(context.Background(), 1, "2024-01-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, report.Projects, 2)

	north := report.Projects[0]
	assert.Equal(t, "North Bridge", north.ProjectName)
	require.Len(t, north.Vendors, 2)
	assert.Equal(t, VendorLine{
		VendorName:   "Steel Supply Co",
		BizType:      "material",
		AccrualTotal: 5000,
		PaidTotal:    3000,
		Balance:      2000,
	}, north.Vendors[0])
	assert.Equal(t, ApTotals{AccrualTotal: 6200, PaidTotal: 3000, Balance: 3200}, north.Subtotal)

	harbor := report.Projects[1]
	assert.Equal(t, "Harbor Expansion", harbor.ProjectName)
	require.Len(t, harbor.Vendors, 1)
	assert.Equal(t, ApTotals{AccrualTotal: 800, PaidTotal: 0, Balance: 800}, harbor.Subtotal)

	assert.Equal(t, ApTotals{AccrualTotal: 7000, PaidTotal: 3000, Balance: 4000}, report.GrandTotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApSummaryEmpty(t *testing.T) {
	svc, mock := newTestService(t, 0)

	mock.ExpectQuery(`FROM ap_accrual a`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "project_name", "vendor_name", "biz_type", "accrual_total"}))
	mock.ExpectQuery(`FROM ap_payment a`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "vendor_name", "biz_type", "paid_total"}))

	report, err := svc.ApSummary(context.Background(), 1, "2024-01-01", "2024-03-31")
	require.NoError(t, err)
	assert.NotNil(t, report.Projects)
	assert.Empty(t, report.Projects)
	assert.Equal(t, ApTotals{}, report.GrandTotal)
}
