package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finvia/reportd/pkg/observability"
	"github.com/finvia/reportd/pkg/storage"
)

// Repo runs the report SQL. Placeholders are rewritten per driver through
// storage.Rebind.
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

// QueryCostBenefit returns the cost-benefit rows for a company and month
// range. TotalCost sums tax, material, machine, both labor buckets, and
// other cost; depreciation and finance fees stay outside it. Profit is
// output plus non-production income minus total cost and non-production
// expense.
func (r *Repo) QueryCostBenefit(ctx context.Context, companyID int64, dateFrom, dateTo string) (rows []CostBenefitRow, err error) {
	start := time.Now()
	defer func() { r.observe("report_cost_benefit", start, err) }()

	query := storage.Rebind(r.driver, `
		SELECT c.name, p.name,
			cb.output_value, cb.tax, cb.material_cost,
			cb.machine_cost, cb.machine_depr_cost,
			cb.labor_mgmt_cost, cb.labor_project_cost,
			cb.other_cost, cb.finance_fee,
			(cb.tax + cb.material_cost + cb.machine_cost + cb.labor_mgmt_cost + cb.labor_project_cost + cb.other_cost) AS total_cost,
			cb.nonprod_income, cb.nonprod_expense,
			((cb.output_value + cb.nonprod_income) - (cb.tax + cb.material_cost + cb.machine_cost + cb.labor_mgmt_cost + cb.labor_project_cost + cb.other_cost + cb.nonprod_expense)) AS profit,
			cb.income_tax, cb.assess_profit, cb.remark
		FROM cost_benefit_monthly cb
		JOIN companies c ON c.id = cb.company_id
		JOIN projects p ON p.id = cb.project_id
		WHERE cb.company_id = ? AND cb.month >= ? AND cb.month <= ?
		ORDER BY p.id`)

	result, err := r.db.QueryContext(ctx, query, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("query cost benefit: %w", err)
	}
	defer result.Close()

	rows = []CostBenefitRow{}
	for result.Next() {
		var row CostBenefitRow
		if err = result.Scan(&row.CompanyName, &row.ProjectName,
			&row.OutputValue, &row.Tax, &row.MaterialCost,
			&row.MachineCost, &row.MachineDeprCost,
			&row.LaborMgmtCost, &row.LaborProjectCost,
			&row.OtherCost, &row.FinanceFee, &row.TotalCost,
			&row.NonprodIncome, &row.NonprodExpense, &row.Profit,
			&row.IncomeTax, &row.AssessProfit, &row.Remark); err != nil {
			return nil, fmt.Errorf("scan cost benefit row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

type accrualAgg struct {
	projectID    int64
	projectName  string
	vendorName   string
	bizType      string
	accrualTotal float64
}

// QueryApSummary aggregates accruals and payments per project, vendor, and
// business type, then joins them in memory. Accrual rows drive the report;
// payments with no matching accrual line are dropped. Project order follows
// project id.
func (r *Repo) QueryApSummary(ctx context.Context, companyID int64, dateFrom, dateTo string) (report *ApSummaryReport, err error) {
	start := time.Now()
	defer func() { r.observe("report_ap_summary", start, err) }()

	accruals, err := r.queryAccrualAgg(ctx, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	paid, err := r.queryPaymentAgg(ctx, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	byProject := map[int64]*ProjectApSummary{}
	order := []int64{}

	report = &ApSummaryReport{Projects: []ProjectApSummary{}}
	for _, a := range accruals {
		key := fmt.Sprintf("%d|%s|%s", a.projectID, a.vendorName, a.bizType)
		paidTotal := paid[key]

		p, ok := byProject[a.projectID]
		if !ok {
			p = &ProjectApSummary{ProjectName: a.projectName, Vendors: []VendorLine{}}
			byProject[a.projectID] = p
			order = append(order, a.projectID)
		}

		p.Vendors = append(p.Vendors, VendorLine{
			VendorName:   a.vendorName,
			BizType:      a.bizType,
			AccrualTotal: a.accrualTotal,
			PaidTotal:    paidTotal,
			Balance:      a.accrualTotal - paidTotal,
		})
		p.Subtotal.AccrualTotal += a.accrualTotal
		p.Subtotal.PaidTotal += paidTotal
	}

	for _, id := range order {
		p := byProject[id]
		p.Subtotal.Balance = p.Subtotal.AccrualTotal - p.Subtotal.PaidTotal
		report.Projects = append(report.Projects, *p)
		report.GrandTotal.AccrualTotal += p.Subtotal.AccrualTotal
		report.GrandTotal.PaidTotal += p.Subtotal.PaidTotal
	}
	report.GrandTotal.Balance = report.GrandTotal.AccrualTotal - report.GrandTotal.PaidTotal
	return report, nil
}

func (r *Repo) queryAccrualAgg(ctx context.Context, companyID int64, dateFrom, dateTo string) ([]accrualAgg, error) {
	query := storage.Rebind(r.driver, `
		SELECT p.id, p.name, a.vendor_name, a.biz_type, SUM(a.amount)
		FROM ap_accrual a
		JOIN projects p ON p.id = a.project_id
		WHERE a.company_id = ? AND a.biz_date >= ? AND a.biz_date <= ?
		GROUP BY p.id, p.name, a.vendor_name, a.biz_type
		ORDER BY p.id`)

	rows, err := r.db.QueryContext(ctx, query, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("query ap accrual summary: %w", err)
	}
	defer rows.Close()

	out := []accrualAgg{}
	for rows.Next() {
		var a accrualAgg
		if err := rows.Scan(&a.projectID, &a.projectName, &a.vendorName, &a.bizType, &a.accrualTotal); err != nil {
			return nil, fmt.Errorf("scan ap accrual summary: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) queryPaymentAgg(ctx context.Context, companyID int64, dateFrom, dateTo string) (map[string]float64, error) {
	query := storage.Rebind(r.driver, `
		SELECT p.id, a.vendor_name, a.biz_type, SUM(a.amount)
		FROM ap_payment a
		JOIN projects p ON p.id = a.project_id
		WHERE a.company_id = ? AND a.pay_date >= ? AND a.pay_date <= ?
		GROUP BY p.id, a.vendor_name, a.biz_type`)

	rows, err := r.db.QueryContext(ctx, query, companyID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("query ap payment summary: %w", err)
	}
	defer rows.Close()

	paid := map[string]float64{}
	for rows.Next() {
		var projectID int64
		var vendorName, bizType string
		var paidTotal float64
		if err := rows.Scan(&projectID, &vendorName, &bizType, &paidTotal); err != nil {
			return nil, fmt.Errorf("scan ap payment summary: %w", err)
		}
		paid[fmt.Sprintf("%d|%s|%s", projectID, vendorName, bizType)] = paidTotal
	}
	return paid, rows.Err()
}
