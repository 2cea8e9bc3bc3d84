package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finvia/reportd/pkg/audit"
	"github.com/finvia/reportd/pkg/authz"
	"github.com/finvia/reportd/pkg/finance"
	"github.com/finvia/reportd/pkg/observability"
	"github.com/finvia/reportd/pkg/reports"
	"github.com/finvia/reportd/pkg/storage"
)

type envelope struct {
	OK   bool            `json:"ok"`
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	handler  http.Handler
	srv      *Server
	authz    *authz.Service
	recorder *audit.DBRecorder
}

// newTestServer wires a full server over an in-memory SQLite database with
// the default seed accounts: admin/admin123, finance_a/finance123 scoped to
// company 1, finance_b/finance123 scoped to company 2.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := storage.Open(storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(context.Background(), db, storage.DriverSQLite))

	authzSvc := authz.NewService(authz.DefaultSeed())
	financeSvc := finance.NewService(finance.NewRepo(db, storage.DriverSQLite, nil))
	reportsSvc := reports.NewService(reports.NewRepo(db, storage.DriverSQLite, nil), 16, time.Minute, nil)
	recorder := audit.NewDBRecorder(db, storage.DriverSQLite)

	srv := NewServer(Options{
		Logger:  observability.NewLogger(observability.ErrorLevel, io.Discard),
		Authz:   authzSvc,
		Finance: financeSvc,
		Reports: reportsSvc,
		Audit:   recorder,
	})

	return &testServer{handler: srv.Handler(), srv: srv, authz: authzSvc, recorder: recorder}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func (ts *testServer) loginAs(t *testing.T, username, password string) string {
	t.Helper()

	result, err := ts.authz.Login(username, password)
	require.NoError(t, err)
	return result.Token
}

func decodeData(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}
