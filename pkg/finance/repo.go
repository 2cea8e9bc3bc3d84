package finance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finvia/reportd/pkg/observability"
	"github.com/finvia/reportd/pkg/storage"
)

// Repo runs the finance SQL. All queries are parameterized; placeholders
// are rewritten per driver through storage.Rebind.
type Repo struct {
	db      *sql.DB
	driver  string
	metrics *observability.Metrics
}

// NewRepo creates a repository over an opened database. Metrics may be nil.
func NewRepo(db *sql.DB, driver string, metrics *observability.Metrics) *Repo {
	return &Repo{db: db, driver: driver, metrics: metrics}
}

func (r *Repo) observe(op string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBQueriesTotal.WithLabelValues(op).Inc()
	r.metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.DBErrorsTotal.WithLabelValues(op).Inc()
	}
}

// ListCompanies returns all companies ordered by id
func (r *Repo) ListCompanies(ctx context.Context) (companies []Company, err error) {
	start := time.Now()
	defer func() { r.observe("list_companies", start, err) }()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies = []Company{}
	for rows.Next() {
		var c Company
		if err = rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// ListProjects returns projects ordered by id, optionally filtered by
// company when companyID > 0
func (r *Repo) ListProjects(ctx context.Context, companyID int64) (projects []Project, err error) {
	start := time.Now()
	defer func() { r.observe("list_projects", start, err) }()

	query := `SELECT id, company_id, name FROM projects ORDER BY id`
	args := []interface{}{}
	if companyID > 0 {
		query = storage.Rebind(r.driver, `SELECT id, company_id, name FROM projects WHERE company_id = ? ORDER BY id`)
		args = append(args, companyID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects = []Project{}
	for rows.Next() {
		var p Project
		if err = rows.Scan(&p.ID, &p.CompanyID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateCompany inserts a company with an explicit id
func (r *Repo) CreateCompany(ctx context.Context, id int64, name string) (affected int64, err error) {
	start := time.Now()
	defer func() { r.observe("create_company", start, err) }()

	res, err := r.db.ExecContext(ctx,
		storage.Rebind(r.driver, `INSERT INTO companies (id, name) VALUES (?, ?)`), id, name)
	if err != nil {
		return 0, fmt.Errorf("create company: %w", err)
	}
	return res.RowsAffected()
}

// CreateProject inserts a project with an explicit id
func (r *Repo) CreateProject(ctx context.Context, id, companyID int64, name string) (affected int64, err error) {
	start := time.Now()
	defer func() { r.observe("create_project", start, err) }()

	res, err := r.db.ExecContext(ctx,
		storage.Rebind(r.driver, `INSERT INTO projects (id, company_id, name) VALUES (?, ?, ?)`),
		id, companyID, name)
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}
	return res.RowsAffected()
}

// UpsertCostBenefit inserts or replaces the entry for (project, month)
func (r *Repo) UpsertCostBenefit(ctx context.Context, e CostBenefitEntry) (affected int64, err error) {
	start := time.Now()
	defer func() { r.observe("upsert_cost_benefit", start, err) }()

	query := storage.Rebind(r.driver, `
		INSERT INTO cost_benefit_monthly (
			company_id, project_id, month, output_value, tax, material_cost,
			machine_cost, machine_depr_cost, labor_mgmt_cost, labor_project_cost,
			other_cost, finance_fee, nonprod_income, nonprod_expense, income_tax,
			assess_profit, remark
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, month) DO UPDATE SET
			company_id = excluded.company_id,
			output_value = excluded.output_value,
			tax = excluded.tax,
			material_cost = excluded.material_cost,
			machine_cost = excluded.machine_cost,
			machine_depr_cost = excluded.machine_depr_cost,
			labor_mgmt_cost = excluded.labor_mgmt_cost,
			labor_project_cost = excluded.labor_project_cost,
			other_cost = excluded.other_cost,
			finance_fee = excluded.finance_fee,
			nonprod_income = excluded.nonprod_income,
			nonprod_expense = excluded.nonprod_expense,
			income_tax = excluded.income_tax,
			assess_profit = excluded.assess_profit,
			remark = excluded.remark`)

	res, err := r.db.ExecContext(ctx, query,
		e.CompanyID, e.ProjectID, e.Month, e.OutputValue, e.Tax, e.MaterialCost,
		e.MachineCost, e.MachineDeprCost, e.LaborMgmtCost, e.LaborProjectCost,
		e.OtherCost, e.FinanceFee, e.NonprodIncome, e.NonprodExpense, e.IncomeTax,
		e.AssessProfit, e.Remark)
	if err != nil {
		return 0, fmt.Errorf("upsert cost benefit: %w", err)
	}
	return res.RowsAffected()
}

// ListCostBenefit returns raw entries for a company and month range
func (r *Repo) ListCostBenefit(ctx context.Context, companyID int64, dateFrom, dateTo string) (entries []CostBenefitEntry, err error) {
	start := time.Now()
	defer func() { r.observe("list_cost_benefit", start, err) }()

	query := storage.Rebind(r.driver, `
		SELECT company_id, project_id, month, output_value, tax, material_cost,
			machine_cost, machine_depr_cost, labor_mgmt_cost, labor_project_cost,
			other_cost, finance_fee, nonprod_income, nonprod_expense, income_tax,
			assess_profit, remark
		FROM cost_benefit_monthly
		WHERE company_id = ? AND month >= ? AND month <= ?
		ORDER BY project_id, month`)

	rows, err := r.db.QueryContext(ctx, query, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("list cost benefit: %w", err)
	}
	defer rows.Close()

	entries = []CostBenefitEntry{}
	for rows.Next() {
		var e CostBenefitEntry
		if err = rows.Scan(&e.CompanyID, &e.ProjectID, &e.Month, &e.OutputValue, &e.Tax,
			&e.MaterialCost, &e.MachineCost, &e.MachineDeprCost, &e.LaborMgmtCost,
			&e.LaborProjectCost, &e.OtherCost, &e.FinanceFee, &e.NonprodIncome,
			&e.NonprodExpense, &e.IncomeTax, &e.AssessProfit, &e.Remark); err != nil {
			return nil, fmt.Errorf("scan cost benefit: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateApAccrual appends one accrual line
func (r *Repo) CreateApAccrual(ctx context.Context, a ApAccrual) (affected int64, err error) {
	start := time.Now()
	defer func() { r.observe("create_ap_accrual", start, err) }()

	res, err := r.db.ExecContext(ctx,
		storage.Rebind(r.driver, `INSERT INTO ap_accrual (company_id, project_id, vendor_name, biz_type, amount, biz_date) VALUES (?, ?, ?, ?, ?, ?)`),
		a.CompanyID, a.ProjectID, a.VendorName, a.BizType, a.Amount, a.BizDate)
	if err != nil {
		return 0, fmt.Errorf("create ap accrual: %w", err)
	}
	return res.RowsAffected()
}

// CreateApPayment appends one payment line
func (r *Repo) CreateApPayment(ctx context.Context, p ApPayment) (affected int64, err error) {
	start := time.Now()
	defer func() { r.observe("create_ap_payment", start, err) }()

	res, err := r.db.ExecContext(ctx,
		storage.Rebind(r.driver, `INSERT INTO ap_payment (company_id, project_id, vendor_name, biz_type, amount, pay_date) VALUES (?, ?, ?, ?, ?, ?)`),
		p.CompanyID, p.ProjectID, p.VendorName, p.BizType, p.Amount, p.PayDate)
	if err != nil {
		return 0, fmt.Errorf("create ap payment: %w", err)
	}
	return res.RowsAffected()
}

// ListApAccrual returns accrual lines for a company and date range, newest
// first
func (r *Repo) ListApAccrual(ctx context.Context, companyID int64, dateFrom, dateTo string) (lines []ApAccrual, err error) {
	start := time.Now()
	defer func() { r.observe("list_ap_accrual", start, err) }()

	query := storage.Rebind(r.driver, `
		SELECT id, company_id, project_id, vendor_name, biz_type, amount, biz_date
		FROM ap_accrual
		WHERE company_id = ? AND biz_date >= ? AND biz_date <= ?
		ORDER BY id DESC`)

	rows, err := r.db.QueryContext(ctx, query, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("list ap accrual: %w", err)
	}
	defer rows.Close()

	lines = []ApAccrual{}
	for rows.Next() {
		var a ApAccrual
		if err = rows.Scan(&a.ID, &a.CompanyID, &a.ProjectID, &a.VendorName, &a.BizType, &a.Amount, &a.BizDate); err != nil {
			return nil, fmt.Errorf("scan ap accrual: %w", err)
		}
		lines = append(lines, a)
	}
	return lines, rows.Err()
}

// ListApPayment returns payment lines for a company and date range, newest
// first
func (r *Repo) ListApPayment(ctx context.Context, companyID int64, dateFrom, dateTo string) (lines []ApPayment, err error) {
	start := time.Now()
	defer func() { r.observe("list_ap_payment", start, err) }()

	query := storage.Rebind(r.driver, `
		SELECT id, company_id, project_id, vendor_name, biz_type, amount, pay_date
		FROM ap_payment
		WHERE company_id = ? AND pay_date >= ? AND pay_date <= ?
		ORDER BY id DESC`)

	rows, err := r.db.QueryContext(ctx, query, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("list ap payment: %w", err)
	}
	defer rows.Close()

	lines = []ApPayment{}
	for rows.Next() {
		var p ApPayment
		if err = rows.Scan(&p.ID, &p.CompanyID, &p.ProjectID, &p.VendorName, &p.BizType, &p.Amount, &p.PayDate); err != nil {
			return nil, fmt.Errorf("scan ap payment: %w", err)
		}
		lines = append(lines, p)
	}
	return lines, rows.Err()
}
