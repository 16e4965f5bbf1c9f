// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/handlers"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/notify"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, hub *notify.Hub, notifier notify.Notifier) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg, notifier)
	voteHandler := handlers.NewVoteHandler(db, cfg, notifier)
	resultsHandler := handlers.NewResultsHandler(db, cfg, hub)

	secret := cfg.AuthTokenSecret
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireUser(secret, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll lifecycle (owner operations)
	mux.HandleFunc("POST /polls", authed(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/mine", authed(pollHandler.ListMyPolls))
	mux.HandleFunc("PUT /polls/{id}", authed(pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE /polls/{id}", authed(pollHandler.DeletePoll))

	// Voting (authenticated)
	mux.HandleFunc("POST /polls/{id}/votes", authed(voteHandler.SubmitVote))
	mux.HandleFunc("GET /polls/{id}/votes/me", authed(voteHandler.HasVoted))

	// Results (public reads)
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(resultsHandler.GetPoll))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /polls/{id}/live", middleware.WithLogging(resultsHandler.LivePoll))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollboard API v1"))
	})

	return mux
}
