// Package api exposes the HTTP surface: login and whoami, the admin
// permission and user management endpoints, the finance data endpoints,
// and the two reports.
//
// Every response is an envelope {ok, code, msg, data}. Business failures
// keep HTTP 200 and carry a stable machine code; only authentication
// (401), authorization (403), and internal errors (500) surface as
// transport-level statuses.
//
// Company-scoped finance and report endpoints are gated on the caller's
// permission matrix: reads require read access to the company, writes
// require write access, and admins pass every gate.
package api
