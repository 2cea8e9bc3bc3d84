package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// bigserial returns the auto-incrementing primary key column for the driver
func bigserial(driver string) string {
	if driver == DriverPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Migrate creates the finance schema. Statements are idempotent; Migrate
// runs on every startup.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id BIGINT PRIMARY KEY,
			company_id BIGINT NOT NULL,
			name TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS cost_benefit_monthly (
			id %s,
			company_id BIGINT NOT NULL,
			project_id BIGINT NOT NULL,
			month TEXT NOT NULL,
			output_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			tax DOUBLE PRECISION NOT NULL DEFAULT 0,
			material_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			machine_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			machine_depr_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			labor_mgmt_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			labor_project_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			other_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			finance_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
			nonprod_income DOUBLE PRECISION NOT NULL DEFAULT 0,
			nonprod_expense DOUBLE PRECISION NOT NULL DEFAULT 0,
			income_tax DOUBLE PRECISION NOT NULL DEFAULT 0,
			assess_profit DOUBLE PRECISION NOT NULL DEFAULT 0,
			remark TEXT NOT NULL DEFAULT ''
		)`, bigserial(driver)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ap_accrual (
			id %s,
			company_id BIGINT NOT NULL,
			project_id BIGINT NOT NULL,
			vendor_name TEXT NOT NULL,
			biz_type TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			biz_date TEXT NOT NULL
		)`, bigserial(driver)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ap_payment (
			id %s,
			company_id BIGINT NOT NULL,
			project_id BIGINT NOT NULL,
			vendor_name TEXT NOT NULL,
			biz_type TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			pay_date TEXT NOT NULL
		)`, bigserial(driver)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS audit_log (
			id %s,
			actor_id BIGINT NOT NULL,
			actor_name TEXT NOT NULL,
			action TEXT NOT NULL,
			target TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`, bigserial(driver)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS authz_users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			is_admin %s NOT NULL DEFAULT %s
		)`, boolType(driver), boolFalse(driver)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS authz_permissions (
			user_id BIGINT NOT NULL,
			company_id BIGINT NOT NULL,
			can_read %s NOT NULL DEFAULT %s,
			can_write %s NOT NULL DEFAULT %s,
			PRIMARY KEY (user_id, company_id)
		)`, boolType(driver), boolFalse(driver), boolType(driver), boolFalse(driver)),
		`CREATE INDEX IF NOT EXISTS idx_projects_company ON projects (company_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_cbm_project_month ON cost_benefit_monthly (project_id, month)`,
		`CREATE INDEX IF NOT EXISTS idx_cbm_company_month ON cost_benefit_monthly (company_id, month)`,
		`CREATE INDEX IF NOT EXISTS idx_ap_accrual_company_date ON ap_accrual (company_id, biz_date)`,
		`CREATE INDEX IF NOT EXISTS idx_ap_payment_company_date ON ap_payment (company_id, pay_date)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func boolType(driver string) string {
	if driver == DriverPostgres {
		return "BOOLEAN"
	}
	return "INTEGER"
}

func boolFalse(driver string) string {
	if driver == DriverPostgres {
		return "FALSE"
	}
	return "0"
}
