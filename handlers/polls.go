// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/notify"
)

type PollHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	notifier notify.Notifier
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, notifier notify.Notifier) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, notifier: notifier}
}

// validatePollInput trims the title, question, and option texts, discards
// blank options, and enforces the 2..10 option rule. Returns a message
// describing the first violation, or "" if the input is valid.
func validatePollInput(title, question string, options []string) (string, string, []string, string) {
	title = strings.TrimSpace(title)
	question = strings.TrimSpace(question)

	if title == "" {
		return "", "", nil, "title is required"
	}
	if question == "" {
		return "", "", nil, "question is required"
	}

	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) < models.MinOptions {
		return "", "", nil, "at least 2 options are required"
	}
	if len(cleaned) > models.MaxOptions {
		return "", "", nil, "at most 10 options are allowed"
	}

	return title, question, cleaned, ""
}

// CreatePoll handles POST /polls
// The poll and all its options are written in one transaction, so a poll
// with fewer than 2 options can never be observed or left behind.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}

	title, question, optionTexts, msg := validatePollInput(req.Title, req.Question, req.Options)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, msg)
		return
	}

	pollID := uuid.NewString()
	now := time.Now().UTC()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to create poll")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO polls (id, title, question, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pollID, title, question, userID, now)
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to create poll")
		return
	}

	options := make([]models.OptionResult, len(optionTexts))
	for i, text := range optionTexts {
		optionID := uuid.NewString()
		// Distinct timestamps keep creation order recoverable
		createdAt := now.Add(time.Duration(i) * time.Microsecond)
		_, err = tx.Exec(`
			INSERT INTO poll_options (id, poll_id, option_text, created_at)
			VALUES ($1, $2, $3, $4)
		`, optionID, pollID, text, createdAt)
		if err != nil {
			slog.Error("failed to insert option", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to create poll")
			return
		}
		options[i] = models.OptionResult{ID: optionID, Text: text}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll creation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", pollID, "owner", userID, "options", len(options))

	middleware.JSONResponse(w, http.StatusCreated, models.PollResults{
		Poll: models.Poll{
			ID:        pollID,
			Title:     title,
			Question:  question,
			UserID:    userID,
			CreatedAt: now,
		},
		Options:    options,
		TotalVotes: 0,
	})
}

// UpdatePoll handles PUT /polls/{id}
// Option edits are reconciled as a set difference: entries with an id
// update in place, entries without an id insert, and current options
// absent from the edit set are deleted along with their votes. The
// discarded vote count is reported, not hidden.
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID := middleware.UserID(r)

	ownerID, err := h.pollOwner(pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	if ownerID != userID {
		middleware.ErrorResponse(w, http.StatusForbidden, models.CodeForbidden, "Only the poll owner can edit it")
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}

	// Blank-texted entries are discarded entirely, which for an existing
	// option means deletion - same as omitting it from the edit set.
	edits := make([]models.OptionEdit, 0, len(req.Options))
	texts := make([]string, 0, len(req.Options))
	for _, edit := range req.Options {
		edit.Text = strings.TrimSpace(edit.Text)
		if edit.Text == "" {
			continue
		}
		edits = append(edits, edit)
		texts = append(texts, edit.Text)
	}

	title, question, _, msg := validatePollInput(req.Title, req.Question, texts)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, msg)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE polls SET title = $1, question = $2 WHERE id = $3
	`, title, question, pollID)
	if err != nil {
		slog.Error("failed to update poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to update poll")
		return
	}

	// Current option set, before the edit
	rows, err := tx.Query(`SELECT id FROM poll_options WHERE poll_id = $1`, pollID)
	if err != nil {
		slog.Error("failed to query options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			slog.Error("failed to scan option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
			return
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		slog.Error("failed to read options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}

	now := time.Now().UTC()
	referenced := make(map[string]bool)
	inserts := 0
	for _, edit := range edits {
		if edit.ID == "" {
			createdAt := now.Add(time.Duration(inserts) * time.Microsecond)
			inserts++
			_, err = tx.Exec(`
				INSERT INTO poll_options (id, poll_id, option_text, created_at)
				VALUES ($1, $2, $3, $4)
			`, uuid.NewString(), pollID, edit.Text, createdAt)
			if err != nil {
				slog.Error("failed to insert option", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to update poll")
				return
			}
			continue
		}

		if !existing[edit.ID] || referenced[edit.ID] {
			middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeInvalidOption, "Option "+edit.ID+" does not belong to this poll")
			return
		}
		referenced[edit.ID] = true

		_, err = tx.Exec(`
			UPDATE poll_options SET option_text = $1 WHERE id = $2
		`, edit.Text, edit.ID)
		if err != nil {
			slog.Error("failed to update option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to update poll")
			return
		}
	}

	// Options dropped from the edit set are deleted, cascading their
	// votes. Historical tallies shrink here; that is the documented
	// consequence of removing an option, so it is counted and reported.
	removed := []string{}
	votesDiscarded := 0
	for id := range existing {
		if referenced[id] {
			continue
		}

		var n int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM votes WHERE option_id = $1`, id).Scan(&n); err != nil {
			slog.Error("failed to count votes for removed option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to update poll")
			return
		}

		if _, err := tx.Exec(`DELETE FROM poll_options WHERE id = $1`, id); err != nil {
			slog.Error("failed to delete option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to update poll")
			return
		}

		removed = append(removed, id)
		votesDiscarded += n
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll update", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to update poll")
		return
	}

	h.notifier.PollChanged(pollID, notify.KindPoll)

	slog.Info("poll updated", "poll_id", pollID,
		"options_removed", len(removed), "votes_discarded", votesDiscarded)

	middleware.JSONResponse(w, http.StatusOK, models.UpdatePollResponse{
		RemovedOptionIDs: removed,
		VotesDiscarded:   votesDiscarded,
		Message:          "Poll updated successfully",
	})
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	userID := middleware.UserID(r)

	ownerID, err := h.pollOwner(pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	if ownerID != userID {
		middleware.ErrorResponse(w, http.StatusForbidden, models.CodeForbidden, "Only the poll owner can delete it")
		return
	}

	// FK cascades remove the poll's options and votes with it
	_, err = h.db.Exec(`DELETE FROM polls WHERE id = $1`, pollID)
	if err != nil {
		slog.Error("failed to delete poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Failed to delete poll")
		return
	}

	h.notifier.PollChanged(pollID, notify.KindPoll)

	slog.Info("poll deleted", "poll_id", pollID, "owner", userID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"message": "Poll deleted successfully",
	})
}

// ListMyPolls handles GET /polls/mine
// Returns the requester's polls, newest first, each with its aggregate.
func (h *PollHandler) ListMyPolls(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	rows, err := h.db.Query(`
		SELECT id FROM polls WHERE user_id = $1 ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}
	defer rows.Close()

	pollIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
			return
		}
		pollIDs = append(pollIDs, id)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}

	summaries := []models.PollSummary{}
	for _, id := range pollIDs {
		results, err := ComputeResults(h.db, id)
		if err != nil {
			slog.Error("failed to aggregate poll", "error", err, "poll_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
			return
		}
		summaries = append(summaries, models.PollSummary{
			Poll:       results.Poll,
			Options:    results.Options,
			TotalVotes: results.TotalVotes,
			CreatedAgo: humanize.Time(results.Poll.CreatedAt),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// pollOwner returns the user_id of a poll, or sql.ErrNoRows
func (h *PollHandler) pollOwner(pollID string) (string, error) {
	var ownerID string
	err := h.db.QueryRow(`SELECT user_id FROM polls WHERE id = $1`, pollID).Scan(&ownerID)
	return ownerID, err
}
