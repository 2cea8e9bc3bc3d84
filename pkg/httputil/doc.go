// Package httputil provides HTTP handler utilities for consistent response
// envelopes, JSON encoding/decoding, and request parsing.
//
// # Overview
//
// Every API endpoint replies with the same JSON envelope:
//
//	{"ok": true, "code": 0, "msg": "success", "data": {...}}
//
// Business failures keep HTTP 200 and carry a non-zero code in the
// envelope; clients branch on "ok" rather than on the HTTP status.
// Transport-level failures (missing token, malformed JSON) use the same
// envelope with the appropriate code.
//
// # Request parsing
//
// ParseJSONOrError and the ParsePath*/ParseQuery* helpers reduce handler
// boilerplate by writing the error response themselves and returning a
// boolean the handler can branch on.
package httputil
