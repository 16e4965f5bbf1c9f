// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (via godotenv);
real environment variables take precedence over it, and CLI flags take
precedence over both.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string
  - DatabaseType: "sqlite" (default) or "postgres"
  - AuthTokenSecret: Shared secret for identity-provider tokens (required)
  - RedisURL: Redis URL for cross-instance notifications (optional)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type (sqlite or postgres)
	--auth-secret Identity token secret
	--redis-url   Redis URL

# Environment Variables

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	AUTH_TOKEN_SECRET → --auth-secret
	REDIS_URL         → --redis-url

# Validation

ParseFlags returns an error if required values are missing:

  - AUTH_TOKEN_SECRET must be provided
  - DATABASE_URL must be provided for postgres (sqlite defaults to
    file:pollboard.db)
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
