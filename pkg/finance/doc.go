// Package finance manages the finance reference data behind the reports:
// companies, projects, monthly cost-benefit entries, and accounts-payable
// accruals and payments.
//
// # Overview
//
// Service validates input and delegates to Repo, which runs parameterized
// SQL against the finance database. Monthly cost-benefit entries upsert on
// (project, month); AP accruals and payments are append-only and listed by
// company and date range.
//
// Dates and months travel as YYYY-MM-DD strings throughout, matching the
// wire contract.
package finance
