// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/notify"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *notify.Hub
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, hub *notify.Hub) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Results are world-readable, so any origin may watch them
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// GetPoll handles GET /polls/{id}
// Returns the poll with options in creation order, each with its current
// count and percentage. Recomputed on every read.
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	results, err := ComputeResults(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to aggregate poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetResults handles GET /polls/{id}/results
// Same aggregate as GetPoll, with options ranked by vote count descending
// and winner flags set on every option at the maximum count.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	results, err := ComputeResults(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to aggregate poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeUnexpected, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, RankResults(results))
}

// LivePoll handles GET /polls/{id}/live
// Upgrades to a websocket and pushes a PollEvent whenever a vote is
// recorded or the poll is edited. Events carry no tallies; the client
// re-fetches the aggregate on each event.
func (h *ResultsHandler) LivePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

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

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "poll_id", pollID)
		return
	}
	defer conn.Close()

	events := h.hub.Subscribe(pollID)
	defer h.hub.Unsubscribe(pollID, events)

	slog.Info("live subscriber connected", "poll_id", pollID)

	// Reader goroutine: we never expect client messages, but reading is
	// what surfaces close frames
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				slog.Info("live subscriber dropped", "poll_id", pollID, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
