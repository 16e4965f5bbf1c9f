// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the relational schema for Pollboard.

# Tables

  - polls: id, title, question, user_id, created_at
  - poll_options: id, poll_id (FK cascade), option_text, created_at
  - votes: id, poll_id (FK cascade), option_id (FK cascade), user_id,
    created_at, UNIQUE (poll_id, user_id)

# Integrity

The UNIQUE (poll_id, user_id) constraint on votes is the authoritative
one-vote-per-user-per-poll guard. Application code checks for an existing
vote before inserting, but only the constraint survives a race between
simultaneous submissions: exactly one insert wins, the rest fail and are
surfaced as already_voted.

Deleting a poll cascades to its options and votes; deleting an option
cascades to the votes referencing it. On sqlite this requires the
foreign_keys pragma, which the connection strings used by main and
testutil enable.

# Engines

CreateSchema takes the database type ("postgres" or "sqlite") and runs
the matching DDL. Both variants are idempotent (IF NOT EXISTS).
*/
package db
