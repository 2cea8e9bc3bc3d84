// Package config loads the service configuration from REPORTD_* environment
// variables.
//
// Every knob has a default that works for local development: an SQLite
// database in the working directory, the API on :8080, and health plus
// metrics on :9090. Production deployments point REPORTD_DB_DRIVER and
// REPORTD_DB_DSN at postgres and tune the rest as needed.
//
// LoadConfig reads the environment once at startup and validates the
// result; nothing re-reads the environment after that.
package config
