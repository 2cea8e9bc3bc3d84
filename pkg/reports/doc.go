// Package reports builds the read-only finance reports: the monthly
// cost-benefit report and the accounts-payable summary.
//
// # Overview
//
// Service validates the company and date-range inputs, consults a
// TTL-bounded LRU result cache, and delegates to Repo for the SQL. The
// cost-benefit report computes its derived columns (totalCost, profit) in
// the query itself; the AP summary aggregates accruals and payments per
// project and vendor in two passes and joins them in memory.
//
// Report results are cached per (company, date range) and purged whenever
// the underlying finance data changes.
package reports
