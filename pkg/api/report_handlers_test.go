package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedReportData loads company 1 with one cost-benefit month and a pair of
// AP lines, all through the API as finance_a.
func seedReportData(t *testing.T, ts *testServer) string {
	t.Helper()

	adminToken := ts.loginAs(t, "admin", "admin123")
	seedFinanceData(t, ts, adminToken)

	token := ts.loginAs(t, "finance_a", "finance123")

	_, env := ts.do(t, "POST", "/api/finance/cost_benefit", token, map[string]interface{}{
		"companyId": 1, "projectId": 10, "month": "2024-01-01",
		"outputValue": 1200.0, "tax": 80.0, "materialCost": 300.0,
		"machineCost": 100.0, "machineDeprCost": 50.0,
		"laborMgmtCost": 60.0, "laborProjectCost": 200.0,
		"otherCost": 40.0, "financeFee": 10.0,
		"nonprodIncome": 5.0, "nonprodExpense": 3.0,
	})
	require.True(t, env.OK, "%+v", env)

	_, env = ts.do(t, "POST", "/api/finance/ap_accrual", token, map[string]interface{}{
		"companyId": 1, "projectId": 10, "vendorName": "Steel Supply Co",
		"bizType": "material", "amount": 5000.0, "bizDate": "2024-01-20",
	})
	require.True(t, env.OK, "%+v", env)

	_, env = ts.do(t, "POST", "/api/finance/ap_payment", token, map[string]interface{}{
		"companyId": 1, "projectId": 10, "vendorName": "Steel Supply Co",
		"bizType": "material", "amount": 2000.0, "payDate": "2024-01-25",
	})
	require.True(t, env.OK, "%+v", env)

	return token
}

func TestCostBenefitReport(t *testing.T) {
	ts := newTestServer(t)
	token := seedReportData(t, ts)

	_, env := ts.do(t, "GET", "/api/reports/cost_benefit?company_id=1&date_from=2024-01-01&date_to=2024-03-31", token, nil)
	require.True(t, env.OK, "%+v", env)

	var data struct {
		Rows []struct {
			CompanyName string  `json:"companyName"`
			ProjectName string  `json:"projectName"`
			TotalCost   float64 `json:"totalCost"`
			Profit      float64 `json:"profit"`
			FinanceFee  float64 `json:"financeFee"`
		} `json:"rows"`
	}
	decodeData(t, env, &data)
	require.Len(t, data.Rows, 1)

	row := data.Rows[0]
	assert.Equal(t, "Acme Construction", row.CompanyName)
	assert.Equal(t, "North Bridge", row.ProjectName)

	// tax + material + machine + labor_mgmt + labor_project + other;
	// depreciation and finance fee stay out.
	assert.Equal(t, 780.0, row.TotalCost)
	// (output + nonprod income) - (total cost + nonprod expense)
	assert.Equal(t, 422.0, row.Profit)
	assert.Equal(t, 10.0, row.FinanceFee)
}

func TestApSummaryReport(t *testing.T) {
	ts := newTestServer(t)
	token := seedReportData(t, ts)

	_, env := ts.do(t, "GET", "/api/reports/ap_summary?company_id=1&date_from=2024-01-01&date_to=2024-03-31", token, nil)
	require.True(t, env.OK, "%+v", env)

	var data struct {
		Projects []struct {
			ProjectName string `json:"projectName"`
			Vendors     []struct {
				VendorName   string  `json:"vendorName"`
				AccrualTotal float64 `json:"accrualTotal"`
				PaidTotal    float64 `json:"paidTotal"`
				Balance      float64 `json:"balance"`
			} `json:"vendors"`
			Subtotal struct {
				Balance float64 `json:"balance"`
			} `json:"subtotal"`
		} `json:"projects"`
		GrandTotal struct {
			AccrualTotal float64 `json:"accrualTotal"`
			PaidTotal    float64 `json:"paidTotal"`
			Balance      float64 `json:"balance"`
		} `json:"grandTotal"`
	}
	decodeData(t, env, &data)

	require.Len(t, data.Projects, 1)
	assert.Equal(t, "North Bridge", data.Projects[0].ProjectName)
	require.Len(t, data.Projects[0].Vendors, 1)
	assert.Equal(t, 5000.0, data.Projects[0].Vendors[0].AccrualTotal)
	assert.Equal(t, 2000.0, data.Projects[0].Vendors[0].PaidTotal)
	assert.Equal(t, 3000.0, data.Projects[0].Vendors[0].Balance)
	assert.Equal(t, 3000.0, data.Projects[0].Subtotal.Balance)
	assert.Equal(t, 3000.0, data.GrandTotal.Balance)
}

func TestReportParamValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginAs(t, "finance_a", "finance123")

	t.Run("missing params", func(t *testing.T) {
		rec, env := ts.do(t, "GET", "/api/reports/cost_benefit?company_id=1", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, CodeMissingParams, env.Code)
		assert.Equal(t, "missing_params", env.Msg)
	})

	t.Run("non-numeric company id", func(t *testing.T) {
		_, env := ts.do(t, "GET", "/api/reports/cost_benefit?company_id=abc&date_from=2024-01-01&date_to=2024-01-31", token, nil)
		assert.Equal(t, CodeInvalidCompanyID, env.Code)
	})

	t.Run("bad date format", func(t *testing.T) {
		_, env := ts.do(t, "GET", "/api/reports/ap_summary?company_id=1&date_from=2024-1-1&date_to=2024-01-31", token, nil)
		assert.Equal(t, CodeInvalidDate, env.Code)
		assert.Equal(t, "invalid_date", env.Msg)
	})

	t.Run("read gate", func(t *testing.T) {
		other := ts.loginAs(t, "finance_b", "finance123")
		rec, env := ts.do(t, "GET", "/api/reports/cost_benefit?company_id=1&date_from=2024-01-01&date_to=2024-01-31", other, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeForbidden, env.Code)
	})

	t.Run("admin passes every gate", func(t *testing.T) {
		admin := ts.loginAs(t, "admin", "admin123")
		_, env := ts.do(t, "GET", "/api/reports/cost_benefit?company_id=2&date_from=2024-01-01&date_to=2024-01-31", admin, nil)
		assert.True(t, env.OK)
	})
}
