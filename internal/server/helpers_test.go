package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snackshop-dev/snackadmin/internal/config"
	"github.com/snackshop-dev/snackadmin/internal/models"
)

// testAPI drives the router in process, holding the token of the signed-in user
type testAPI struct {
	t      *testing.T
	srv    *Server
	db     *gorm.DB
	Token  string
	config *config.Config
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		HTTP: config.HTTPConfig{
			Port:        "0",
			CORSOrigins: []string{"http://localhost:5173"},
			UploadDir:   t.TempDir(),
		},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Seed: true,
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// newTestAPI starts a seeded server over an in-memory database
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := newTestConfig(t)
	db := openTestDB(t)
	srv, err := NewWithDB(db, cfg, zerolog.Nop(), "test")
	require.NoError(t, err)

	return &testAPI{t: t, srv: srv, db: db, config: cfg}
}

// LoginAs signs in through the API and keeps the token
func (a *testAPI) LoginAs(email, password string) {
	a.t.Helper()
	resp := a.APICall(http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
		"source":   "admin",
	})
	token, ok := resp["token"].(string)
	require.True(a.t, ok, "Response should contain token")
	a.Token = token
}

// Do sends a request and returns the recorder
func (a *testAPI) Do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(a.t, err, "Failed to marshal request body")
		reqBody = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	rec := httptest.NewRecorder()
	a.srv.Handler().ServeHTTP(rec, req)
	return rec
}

// APICall requires a 2xx answer and decodes a JSON object
func (a *testAPI) APICall(method, path string, body any) map[string]any {
	a.t.Helper()

	rec := a.Do(method, path, body)
	require.True(a.t, rec.Code >= 200 && rec.Code < 300,
		"API call failed: %s %s\nStatus: %d\nBody: %s", method, path, rec.Code, rec.Body.String())

	var result map[string]any
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &result), "Failed to unmarshal response: %s", rec.Body.String())
	return result
}

// APICallList requires a 2xx answer and decodes a JSON array
func (a *testAPI) APICallList(method, path string, body any) []map[string]any {
	a.t.Helper()

	rec := a.Do(method, path, body)
	require.True(a.t, rec.Code >= 200 && rec.Code < 300,
		"API call failed: %s %s\nStatus: %d\nBody: %s", method, path, rec.Code, rec.Body.String())

	var result []map[string]any
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &result), "Failed to unmarshal response: %s", rec.Body.String())
	return result
}

// APIError requires the given status and returns the error message
func (a *testAPI) APIError(status int, method, path string, body any) string {
	a.t.Helper()

	rec := a.Do(method, path, body)
	require.Equal(a.t, status, rec.Code, "Unexpected status for %s %s: %s", method, path, rec.Body.String())

	var result struct {
		Message string `json:"message"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &result), "Failed to unmarshal error: %s", rec.Body.String())
	return result.Message
}

// seeded returns the ID of a seeded record
func (a *testAPI) seeded(model any, where string, args ...any) string {
	a.t.Helper()
	var row struct{ ID string }
	require.NoError(a.t, a.db.Model(model).Select("id").Where(where, args...).Scan(&row).Error)
	require.NotEmpty(a.t, row.ID, fmt.Sprintf("no seeded row for %s", where))
	return row.ID
}

func (a *testAPI) customerID() string {
	return a.seeded(&models.User{}, "email = ?", models.SeedUserEmail)
}
