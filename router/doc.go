// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Pollboard API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, hub, notifier)

# Endpoints

Health:

	GET /health

Poll lifecycle (requires Authorization bearer token):

	POST   /polls       - Create poll with 2..10 options
	GET    /polls/mine  - List the requester's polls, newest first
	PUT    /polls/{id}  - Edit poll (owner only)
	DELETE /polls/{id}  - Delete poll (owner only)

Voting (requires Authorization bearer token):

	POST /polls/{id}/votes    - Submit the requester's single vote
	GET  /polls/{id}/votes/me - Whether the requester has voted

Results (public):

	GET /polls/{id}         - Poll with per-option counts and percentages
	GET /polls/{id}/results - Ranked results with winner flags
	GET /polls/{id}/live    - Websocket pushing refresh events

Route note: "GET /polls/mine" and "GET /polls/{id}" coexist because the
Go 1.22 mux prefers the literal pattern over the wildcard.

# Handler Initialization

The router creates handler instances with dependency injection:

	pollHandler := handlers.NewPollHandler(db, cfg, notifier)
	voteHandler := handlers.NewVoteHandler(db, cfg, notifier)
	resultsHandler := handlers.NewResultsHandler(db, cfg, hub)

Writers get the Notifier (hub, or the Redis bridge when REDIS_URL is
set); the results handler gets the hub itself for websocket subscribers.
*/
package router
