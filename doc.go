// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Pollboard API server.

Pollboard is a polling service: authenticated users create polls with
2..10 options, share them, and collect exactly one vote per user per
poll, with live-updating results.

# Starting the Server

The server reads configuration from environment variables, a .env file,
or CLI flags:

	AUTH_TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --auth-secret "..."

# Configuration

Required settings:

  - AUTH_TOKEN_SECRET (--auth-secret): Shared secret for identity tokens
  - DATABASE_URL (-d): Connection string (required for postgres; sqlite
    defaults to file:pollboard.db)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - REDIS_URL (--redis-url): Enables cross-instance live notifications

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, results, aggregation)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer-token auth, JSON helpers
  - models: Domain, request/response, and aggregation types
  - auth: Identity-provider token validation
  - notify: Live-update hub and optional Redis bridge
  - db: Schema creation (postgres and sqlite)
  - cliparse: Configuration parsing

The one-vote-per-user-per-poll invariant is enforced by a database
UNIQUE constraint, not application checks alone; concurrent duplicate
submissions resolve to exactly one recorded vote. Result tallies are
recomputed from raw vote rows on every read.

See package documentation for each component.
*/
package main
