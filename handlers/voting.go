// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/notify"
)

type VoteHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier notify.Notifier
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, notifier notify.Notifier) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg, notifier: notifier}
}

// isUniqueViolation reports whether err is a uniqueness-constraint
// rejection from either supported engine
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	// modernc.org/sqlite wraps SQLITE_CONSTRAINT_UNIQUE in its message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// SubmitVote handles POST /polls/{id}/votes
// Preconditions are checked in order (poll exists, option belongs to the
// poll, no prior vote), but the UNIQUE (poll_id, user_id) constraint is
// the authoritative guard: when two submissions race past the prior-vote
// check, the second insert fails and is surfaced as already_voted, not
// as a server error. Votes are never updated and never retried.
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID := middleware.UserID(r)

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "option_id is required")
		return
	}

	// 1. Poll must exist
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM polls WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}

	// 2. Option must belong to this poll
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM poll_options WHERE id = $1 AND poll_id = $2)
	`, req.OptionID, pollID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query option", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeInvalidOption, "Option does not belong to this poll")
		return
	}

	// 3. No prior vote by this user
	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2)
	`, pollID, userID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, models.CodeAlreadyVoted, "You have already voted on this poll")
		return
	}

	voteID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO votes (id, poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, pollID, req.OptionID, userID, time.Now().UTC())

	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent duplicate; expected outcome
			slog.Info("duplicate vote rejected by constraint", "poll_id", pollID, "user_id", userID)
			middleware.ErrorResponse(w, http.StatusConflict, models.CodeAlreadyVoted, "You have already voted on this poll")
			return
		}
		slog.Error("failed to insert vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to submit vote")
		return
	}

	h.notifier.PollChanged(pollID, notify.KindVote)

	slog.Info("vote recorded", "poll_id", pollID, "option_id", req.OptionID)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		VoteID:  voteID,
		Message: "Vote recorded successfully",
	})
}

// HasVoted handles GET /polls/{id}/votes/me
// Absence of a vote is the expected state for a poll the user hasn't
// voted on; it is reported, not treated as an error.
func (h *VoteHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID := middleware.UserID(r)

	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM polls WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}

	var optionID string
	err = h.db.QueryRow(`
		SELECT option_id FROM votes WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&optionID)

	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{Voted: false})
		return
	}
	if err != nil {
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{
		Voted:    true,
		OptionID: optionID,
	})
}
