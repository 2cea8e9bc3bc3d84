package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedFinanceData creates company 1 with one project through the API
func seedFinanceData(t *testing.T, ts *testServer, adminToken string) {
	t.Helper()

	_, env := ts.do(t, "POST", "/api/finance/companies", adminToken, map[string]interface{}{
		"id": 1, "name": "Acme Construction",
	})
	require.True(t, env.OK, "create company: %+v", env)

	_, env = ts.do(t, "POST", "/api/finance/projects", adminToken, map[string]interface{}{
		"id": 10, "companyId": 1, "name": "North Bridge",
	})
	require.True(t, env.OK, "create project: %+v", env)
}

func TestFinanceReferenceData(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.loginAs(t, "admin", "admin123")
	userToken := ts.loginAs(t, "finance_a", "finance123")

	seedFinanceData(t, ts, adminToken)

	t.Run("creates are admin only", func(t *testing.T) {
		rec, env := ts.do(t, "POST", "/api/finance/companies", userToken, map[string]interface{}{
			"id": 2, "name": "Borealis Civil",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeForbidden, env.Code)
	})

	t.Run("any user lists companies", func(t *testing.T) {
		_, env := ts.do(t, "GET", "/api/finance/companies", userToken, nil)
		require.True(t, env.OK)

		var data struct {
			Companies []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"companies"`
		}
		decodeData(t, env, &data)
		require.Len(t, data.Companies, 1)
		assert.Equal(t, "Acme Construction", data.Companies[0].Name)
	})

	t.Run("projects filtered by company", func(t *testing.T) {
		_, env := ts.do(t, "GET", "/api/finance/projects?company_id=1", userToken, nil)
		require.True(t, env.OK)

		var data struct {
			Projects []struct {
				ID        int64 `json:"id"`
				CompanyID int64 `json:"companyId"`
			} `json:"projects"`
		}
		decodeData(t, env, &data)
		require.Len(t, data.Projects, 1)
		assert.Equal(t, int64(10), data.Projects[0].ID)
	})

	t.Run("invalid company body", func(t *testing.T) {
		rec, env := ts.do(t, "POST", "/api/finance/companies", adminToken, map[string]interface{}{
			"id": 0, "name": "",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, CodeInvalidParams, env.Code)
	})
}

func TestCostBenefitWriteGate(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.loginAs(t, "admin", "admin123")
	seedFinanceData(t, ts, adminToken)

	entry := map[string]interface{}{
		"companyId": 1, "projectId": 10, "month": "2024-01-01",
		"outputValue": 1200.0, "tax": 80.0, "materialCost": 300.0,
	}

	t.Run("scoped user writes own company", func(t *testing.T) {
		token := ts.loginAs(t, "finance_a", "finance123")
		_, env := ts.do(t, "POST", "/api/finance/cost_benefit", token, entry)
		require.True(t, env.OK, "%+v", env)
	})

	t.Run("other company denied", func(t *testing.T) {
		token := ts.loginAs(t, "finance_b", "finance123")
		rec, env := ts.do(t, "POST", "/api/finance/cost_benefit", token, entry)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeForbidden, env.Code)
	})

	t.Run("upsert replaces the month", func(t *testing.T) {
		token := ts.loginAs(t, "finance_a", "finance123")

		updated := map[string]interface{}{
			"companyId": 1, "projectId": 10, "month": "2024-01-01",
			"outputValue": 2000.0,
		}
		_, env := ts.do(t, "POST", "/api/finance/cost_benefit", token, updated)
		require.True(t, env.OK)

		_, env = ts.do(t, "GET", "/api/finance/cost_benefit?company_id=1&date_from=2024-01-01&date_to=2024-01-31", token, nil)
		require.True(t, env.OK)

		var data struct {
			Rows []struct {
				OutputValue float64 `json:"outputValue"`
			} `json:"rows"`
		}
		decodeData(t, env, &data)
		require.Len(t, data.Rows, 1)
		assert.Equal(t, 2000.0, data.Rows[0].OutputValue)
	})

	t.Run("invalid month", func(t *testing.T) {
		token := ts.loginAs(t, "finance_a", "finance123")
		_, env := ts.do(t, "POST", "/api/finance/cost_benefit", token, map[string]interface{}{
			"companyId": 1, "projectId": 10, "month": "2024-01",
		})
		assert.Equal(t, CodeInvalidParams, env.Code)
	})
}

func TestApLines(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.loginAs(t, "admin", "admin123")
	seedFinanceData(t, ts, adminToken)
	token := ts.loginAs(t, "finance_a", "finance123")

	_, env := ts.do(t, "POST", "/api/finance/ap_accrual", token, map[string]interface{}{
		"companyId": 1, "projectId": 10, "vendorName": "Steel Supply Co",
		"bizType": "material", "amount": 5000.0, "bizDate": "2024-01-20",
	})
	require.True(t, env.OK, "%+v", env)

	_, env = ts.do(t, "POST", "/api/finance/ap_payment", token, map[string]interface{}{
		"companyId": 1, "projectId": 10, "vendorName": "Steel Supply Co",
		"bizType": "material", "amount": 2000.0, "payDate": "2024-01-25",
	})
	require.True(t, env.OK, "%+v", env)

	t.Run("range listing", func(t *testing.T) {
		_, env := ts.do(t, "GET", "/api/finance/ap_accrual?company_id=1&date_from=2024-01-01&date_to=2024-01-31", token, nil)
		require.True(t, env.OK)

		var data struct {
			Rows []struct {
				VendorName string  `json:"vendorName"`
				Amount     float64 `json:"amount"`
			} `json:"rows"`
		}
		decodeData(t, env, &data)
		require.Len(t, data.Rows, 1)
		assert.Equal(t, "Steel Supply Co", data.Rows[0].VendorName)
	})

	t.Run("missing params", func(t *testing.T) {
		_, env := ts.do(t, "GET", "/api/finance/ap_payment?company_id=1", token, nil)
		assert.Equal(t, CodeMissingParams, env.Code)
		assert.Equal(t, "missing_params", env.Msg)
	})

	t.Run("read gate on other company", func(t *testing.T) {
		other := ts.loginAs(t, "finance_b", "finance123")
		rec, env := ts.do(t, "GET", "/api/finance/ap_accrual?company_id=1&date_from=2024-01-01&date_to=2024-01-31", other, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodeForbidden, env.Code)
	})
}
