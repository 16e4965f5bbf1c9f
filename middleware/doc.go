// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Request Logging

WithLogging logs request start and completion with duration:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

# Authentication

RequireUser validates the Authorization bearer token against the shared
identity-provider secret and stores the user ID in the request context:

	middleware.RequireUser(cfg.AuthTokenSecret, handler)

Handlers read the authenticated user with middleware.UserID(r).

# JSON Helpers

  - JSONResponse: write a JSON body with status code
  - ErrorResponse: write a models.ErrorResponse with an error code
  - ParseJSONBody: decode a request body

# CORS

CORS wraps the whole mux and answers preflight requests.
*/
package middleware
