package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lib/pq"

	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/notify"
	"github.com/danielhkuo/pollboard/testutil"
)

func TestSubmitVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg, notify.NewHub())
	submit := middleware.RequireUser(testutil.TestAuthSecret, handler.SubmitVote)

	pollID := testutil.CreateTestPoll(t, db, "alice", "Color", "Favorite?")
	optRed := testutil.AddTestOption(t, db, pollID, "Red")
	optBlue := testutil.AddTestOption(t, db, pollID, "Blue")

	otherPollID := testutil.CreateTestPoll(t, db, "alice", "Other", "Unrelated?")
	foreignOpt := testutil.AddTestOption(t, db, otherPollID, "Elsewhere")

	tests := []struct {
		name           string
		pollID         string
		userID         string
		optionID       string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "valid vote",
			pollID:         pollID,
			userID:         "bob",
			optionID:       optRed,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate vote same option",
			pollID:         pollID,
			userID:         "bob",
			optionID:       optRed,
			expectedStatus: http.StatusConflict,
			expectedCode:   models.CodeAlreadyVoted,
		},
		{
			name:           "duplicate vote different option",
			pollID:         pollID,
			userID:         "bob",
			optionID:       optBlue,
			expectedStatus: http.StatusConflict,
			expectedCode:   models.CodeAlreadyVoted,
		},
		{
			// Referential validity wins regardless of vote history
			name:           "prior voter submits foreign option",
			pollID:         pollID,
			userID:         "bob",
			optionID:       foreignOpt,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeInvalidOption,
		},
		{
			name:           "option from another poll",
			pollID:         pollID,
			userID:         "carol",
			optionID:       foreignOpt,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeInvalidOption,
		},
		{
			name:           "unknown poll",
			pollID:         "no-such-poll",
			userID:         "carol",
			optionID:       optRed,
			expectedStatus: http.StatusNotFound,
			expectedCode:   models.CodeNotFound,
		},
		{
			name:           "missing option id",
			pollID:         pollID,
			userID:         "carol",
			optionID:       "",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls/"+tt.pollID+"/votes",
				models.SubmitVoteRequest{OptionID: tt.optionID},
				testutil.AuthHeaders(t, tt.userID))
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			submit(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedCode != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Code != tt.expectedCode {
					t.Errorf("Expected code %s, got %s", tt.expectedCode, resp.Code)
				}
			}
		})
	}

	// bob's single vote is the only one on the poll
	if n := testutil.CountRows(t, db, "votes", pollID); n != 1 {
		t.Errorf("Expected exactly 1 vote row, got %d", n)
	}
}

func TestSubmitVoteRequiresAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewVoteHandler(db, testutil.GetTestConfig(), notify.NewHub())
	submit := middleware.RequireUser(testutil.TestAuthSecret, handler.SubmitVote)

	req := testutil.MakeRequest("POST", "/polls/x/votes", models.SubmitVoteRequest{OptionID: "y"}, nil)
	req.SetPathValue("id", "x")
	w := httptest.NewRecorder()

	submit(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestSubmitVoteConstraintBackstop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	pollID := testutil.CreateTestPoll(t, db, "alice", "Color", "Favorite?")
	optRed := testutil.AddTestOption(t, db, pollID, "Red")
	testutil.AddTestOption(t, db, pollID, "Blue")

	// First insert succeeds; the duplicate must be rejected by the
	// storage layer itself, independent of handler checks
	testutil.CastTestVote(t, db, pollID, optRed, "bob")
	_, err := db.Exec(`
		INSERT INTO votes (id, poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
	`, "dup-vote", pollID, optRed, "bob")

	if err == nil {
		t.Fatal("Expected unique constraint violation, got none")
	}
	if !isUniqueViolation(err) {
		t.Errorf("Expected isUniqueViolation to recognize %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "postgres unique_violation",
			err:      &pq.Error{Code: "23505"},
			expected: true,
		},
		{
			name:     "postgres other error",
			err:      &pq.Error{Code: "23503"}, // foreign_key_violation
			expected: false,
		},
		{
			name:     "wrapped postgres unique_violation",
			err:      fmt.Errorf("insert failed: %w", &pq.Error{Code: "23505"}),
			expected: true,
		},
		{
			name:     "sqlite unique message",
			err:      errors.New("constraint failed: UNIQUE constraint failed: votes.poll_id, votes.user_id (2067)"),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("connection refused"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.expected {
				t.Errorf("isUniqueViolation(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestHasVoted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg, notify.NewHub())
	hasVoted := middleware.RequireUser(testutil.TestAuthSecret, handler.HasVoted)

	pollID := testutil.CreateTestPoll(t, db, "alice", "Color", "Favorite?")
	optRed := testutil.AddTestOption(t, db, pollID, "Red")
	testutil.AddTestOption(t, db, pollID, "Blue")

	t.Run("not voted yet", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+pollID+"/votes/me", nil, testutil.AuthHeaders(t, "bob"))
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()

		hasVoted(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.HasVotedResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Voted {
			t.Error("Expected voted=false before voting")
		}
		if resp.OptionID != "" {
			t.Errorf("Expected empty option_id, got %s", resp.OptionID)
		}
	})

	t.Run("after voting", func(t *testing.T) {
		testutil.CastTestVote(t, db, pollID, optRed, "bob")

		req := testutil.MakeRequest("GET", "/polls/"+pollID+"/votes/me", nil, testutil.AuthHeaders(t, "bob"))
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()

		hasVoted(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.HasVotedResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Voted {
			t.Error("Expected voted=true after voting")
		}
		if resp.OptionID != optRed {
			t.Errorf("Expected option %s, got %s", optRed, resp.OptionID)
		}
	})

	t.Run("unknown poll", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/nope/votes/me", nil, testutil.AuthHeaders(t, "bob"))
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		hasVoted(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
