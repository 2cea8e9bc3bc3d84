// Package audit records who did what to the permission and finance data.
//
// Every mutating admin or finance operation emits one Event naming the
// actor, the action, and the target. Events go to a Recorder; the
// SQL-backed DBRecorder appends them to the audit_log table, and
// NopRecorder discards them for deployments that do not keep a trail.
//
// Audit failures never fail the operation that triggered them. Callers
// log the returned error and move on.
package audit
