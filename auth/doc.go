// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth validates identity-provider bearer tokens.

Pollboard does not manage accounts. Users sign in against an external
identity provider, which issues HS256 JWTs signed with a secret shared
with this server (AUTH_TOKEN_SECRET). The server treats the token's
subject claim as an opaque user identifier and stores it as the owner of
polls and votes.

# Usage

	userID, err := auth.ParseUserToken(tokenStr, cfg.AuthTokenSecret)

ParseUserToken rejects tokens that are expired, malformed, unsigned, or
signed with a non-HMAC method.

SignUserToken mints tokens against the same secret for tests and local
development.
*/
package auth
