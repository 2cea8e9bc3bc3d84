package finance

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvia/reportd/pkg/storage"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(NewRepo(db, storage.DriverSQLite, nil)), mock
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2024-01-15", true},
		{"2024-01", false},
		{"2024/01/15", false},
		{"2024-1-15", false},
		{"20240115", false},
		{"", false},
		{"abcd-ef-gh", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, validDate(tt.input))
		})
	}
}

func TestListCompanies(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT id, name FROM companies ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Acme Construction").
			AddRow(2, "Borealis Civil"))

	companies, err := svc.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, Company{ID: 1, Name: "Acme Construction"}, companies[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProjects(t *testing.T) {
	t.Run("negative company id rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ListProjects(context.Background(), -1)
		assert.ErrorIs(t, err, ErrInvalidCompanyID)
	})

	t.Run("zero lists all projects", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`SELECT id, company_id, name FROM projects ORDER BY id`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "name"}).
				AddRow(10, 1, "North Bridge").
				AddRow(11, 2, "Harbor Expansion"))

		projects, err := svc.ListProjects(context.Background(), 0)
		require.NoError(t, err)
		assert.Len(t, projects, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("positive filters by company", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`SELECT id, company_id, name FROM projects WHERE company_id = \?`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "name"}).
				AddRow(10, 1, "North Bridge"))

		projects, err := svc.ListProjects(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, int64(1), projects[0].CompanyID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateCompany(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CreateCompany(context.Background(), 0, "x")
		assert.ErrorIs(t, err, ErrInvalidParams)
		_, err = svc.CreateCompany(context.Background(), 1, "")
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("insert", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectExec(`INSERT INTO companies \(id, name\) VALUES \(\?, \?\)`).
			WithArgs(int64(3), "Cobalt Infra").
			WillReturnResult(sqlmock.NewResult(0, 1))

		affected, err := svc.CreateCompany(context.Background(), 3, "Cobalt Infra")
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateProject(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.CreateProject(context.Background(), 10, 0, "North Bridge")
	assert.ErrorIs(t, err, ErrInvalidParams)

	mock.ExpectExec(`INSERT INTO projects \(id, company_id, name\) VALUES \(\?, \?, \?\)`).
		WithArgs(int64(10), int64(1), "North Bridge").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := svc.CreateProject(context.Background(), 10, 1, "North Bridge")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestUpsertCostBenefit(t *testing.T) {
	entry := CostBenefitEntry{
		CompanyID:   1,
		ProjectID:   10,
		Month:       "2024-01-01",
		OutputValue: 1200,
		Tax:         80,
		Remark:      "initial entry",
	}

	t.Run("validation", func(t *testing.T) {
		svc, _ := newTestService(t)

		bad := entry
		bad.Month = "2024-01"
		_, err := svc.UpsertCostBenefit(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidParams)

		bad = entry
		bad.ProjectID = 0
		_, err = svc.UpsertCostBenefit(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("upsert", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectExec(`INSERT INTO cost_benefit_monthly`).
			WithArgs(entry.CompanyID, entry.ProjectID, entry.Month, entry.OutputValue, entry.Tax,
				entry.MaterialCost, entry.MachineCost, entry.MachineDeprCost, entry.LaborMgmtCost,
				entry.LaborProjectCost, entry.OtherCost, entry.FinanceFee, entry.NonprodIncome,
				entry.NonprodExpense, entry.IncomeTax, entry.AssessProfit, entry.Remark).
			WillReturnResult(sqlmock.NewResult(0, 1))

		affected, err := svc.UpsertCostBenefit(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApAccrualAndPayment(t *testing.T) {
	accrual := ApAccrual{
		CompanyID:  1,
		ProjectID:  10,
		VendorName: "Steel Supply Co",
		BizType:    "material",
		Amount:     5000,
		BizDate:    "2024-01-20",
	}

	t.Run("accrual validation", func(t *testing.T) {
		svc, _ := newTestService(t)

		bad := accrual
		bad.VendorName = ""
		_, err := svc.CreateApAccrual(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidParams)

		bad = accrual
		bad.BizDate = "Jan 20"
		_, err = svc.CreateApAccrual(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("accrual insert and list", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectExec(`INSERT INTO ap_accrual`).
			WithArgs(accrual.CompanyID, accrual.ProjectID, accrual.VendorName, accrual.BizType, accrual.Amount, accrual.BizDate).
			WillReturnResult(sqlmock.NewResult(1, 1))

		_, err := svc.CreateApAccrual(context.Background(), accrual)
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT id, company_id, project_id, vendor_name, biz_type, amount, biz_date`).
			WithArgs(int64(1), "2024-01-01", "2024-01-31").
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "project_id", "vendor_name", "biz_type", "amount", "biz_date"}).
				AddRow(1, 1, 10, "Steel Supply Co", "material", 5000.0, "2024-01-20"))

		lines, err := svc.ListApAccrual(context.Background(), 1, "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "Steel Supply Co", lines[0].VendorName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payment insert and list", func(t *testing.T) {
		svc, mock := newTestService(t)
		payment := ApPayment{
			CompanyID:  1,
			ProjectID:  10,
			VendorName: "Steel Supply Co",
			BizType:    "material",
			Amount:     2000,
			PayDate:    "2024-01-25",
		}

		mock.ExpectExec(`INSERT INTO ap_payment`).
			WithArgs(payment.CompanyID, payment.ProjectID, payment.VendorName, payment.BizType, payment.Amount, payment.PayDate).
			WillReturnResult(sqlmock.NewResult(1, 1))

		_, err := svc.CreateApPayment(context.Background(), payment)
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT id, company_id, project_id, vendor_name, biz_type, amount, pay_date`).
			WithArgs(int64(1), "2024-01-01", "2024-01-31").
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "project_id", "vendor_name", "biz_type", "amount", "pay_date"}).
				AddRow(1, 1, 10, "Steel Supply Co", "material", 2000.0, "2024-01-25"))

		lines, err := svc.ListApPayment(context.Background(), 1, "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 2000.0, lines[0].Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("range listing validation", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ListApAccrual(context.Background(), 0, "2024-01-01", "2024-01-31")
		assert.ErrorIs(t, err, ErrInvalidParams)
		_, err = svc.ListApPayment(context.Background(), 1, "2024-1-1", "2024-01-31")
		assert.ErrorIs(t, err, ErrInvalidParams)
	})
}

func TestListCostBenefit(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.ListCostBenefit(context.Background(), 1, "2024-01", "2024-02")
	assert.ErrorIs(t, err, ErrInvalidParams)

	cols := []string{"company_id", "project_id", "month", "output_value", "tax", "material_cost",
		"machine_cost", "machine_depr_cost", "labor_mgmt_cost", "labor_project_cost",
		"other_cost", "finance_fee", "nonprod_income", "nonprod_expense", "income_tax",
		"assess_profit", "remark"}

	mock.ExpectQuery(`SELECT company_id, project_id, month`).
		WithArgs(int64(1), "2024-01-01", "2024-03-31").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 10, "2024-01-01", 1200.0, 80.0, 300.0, 100.0, 50.0, 60.0, 200.0, 40.0, 10.0, 5.0, 3.0, 20.0, 400.0, ""))

	entries, err := svc.ListCostBenefit(context.Background(), 1, "2024-01-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1200.0, entries[0].OutputValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
