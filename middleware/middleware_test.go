// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/models"
)

const testSecret = "middleware-test-secret"

func TestRequireUser(t *testing.T) {
	validToken, err := auth.SignUserToken("user-42", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	expiredToken, err := auth.SignUserToken("user-42", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "valid bearer token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedUser:   "user-42",
		},
		{
			name:           "lowercase bearer scheme",
			authHeader:     "bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedUser:   "user-42",
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic " + validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			handler := RequireUser(testSecret, func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/polls/mine", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && gotUser != tt.expectedUser {
				t.Errorf("Expected user %s in context, got %s", tt.expectedUser, gotUser)
			}
		})
	}
}

func TestUserIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := UserID(req); got != "" {
		t.Errorf("Expected empty user ID, got %s", got)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusConflict, models.CodeAlreadyVoted, "You have already voted on this poll")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != models.CodeAlreadyVoted {
		t.Errorf("Expected code already_voted, got %s", resp.Code)
	}
	if resp.Error != "Conflict" {
		t.Errorf("Expected error 'Conflict', got %s", resp.Error)
	}
}

func TestParseJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/polls", strings.NewReader(`{"title":"Lunch"}`))
	var body models.CreatePollRequest
	if err := ParseJSONBody(req, &body); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if body.Title != "Lunch" {
		t.Errorf("Expected title 'Lunch', got %s", body.Title)
	}

	req = httptest.NewRequest("POST", "/polls", strings.NewReader(`{not json`))
	if err := ParseJSONBody(req, &body); err == nil {
		t.Error("Expected error for invalid JSON, got none")
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Next handler should not run for preflight")
	}))

	req := httptest.NewRequest("OPTIONS", "/polls", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected origin echoed back, got %s", got)
	}
}

func TestWithLoggingPassesThrough(t *testing.T) {
	called := false
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/", nil))

	if !called {
		t.Error("Expected wrapped handler to be called")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status passthrough, got %d", w.Code)
	}
}
