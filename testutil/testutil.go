// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/db"
)

// TestAuthSecret signs tokens for test requests
const TestAuthSecret = "test-auth-secret"

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. Each call gets its own database, so tests stay independent.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// cache=shared keeps the memory database visible across pooled
	// connections; foreign_keys makes the cascade deletes hold.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// sqlite serializes writes; a single pooled connection avoids
	// SQLITE_BUSY churn in concurrent tests without changing semantics
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseType:    "sqlite",
		DatabaseURL:     "file::memory:",
		AuthTokenSecret: TestAuthSecret,
	}
}

// CreateTestPoll inserts a poll owned by ownerID and returns its ID
func CreateTestPoll(t *testing.T, conn *sql.DB, ownerID, title, question string) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO polls (id, title, question, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, title, question, ownerID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestOption adds an option to a poll and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, pollID, text string) string {
	t.Helper()

	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll_options (id, poll_id, option_text, created_at)
		VALUES ($1, $2, $3, $4)
	`, optionID, pollID, text, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CastTestVote inserts a vote row directly and returns the vote ID
func CastTestVote(t *testing.T, conn *sql.DB, pollID, optionID, userID string) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO votes (id, poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, pollID, optionID, userID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return voteID
}

// AuthHeaders returns request headers carrying a bearer token for userID
func AuthHeaders(t *testing.T, userID string) map[string]string {
	t.Helper()

	token, err := auth.SignUserToken(userID, TestAuthSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// CountRows returns the number of rows in table matching the poll ID
func CountRows(t *testing.T, conn *sql.DB, table, pollID string) int {
	t.Helper()
	var count int
	err := conn.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE poll_id = $1", pollID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}
