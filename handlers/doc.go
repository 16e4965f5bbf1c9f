// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Pollboard API.

# Handler Types

Each handler is a struct with database, config, and notifier dependencies:

  - PollHandler: Poll lifecycle (create, update, delete, owner listing)
  - VoteHandler: Vote submission and has-voted lookup
  - ResultsHandler: Aggregated reads and the live websocket

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(db, cfg, notifier)

# Poll Lifecycle

	POST   /polls       → CreatePoll (poll + 2..10 options, one transaction)
	PUT    /polls/{id}  → UpdatePoll (owner only; reconciles the option set)
	DELETE /polls/{id}  → DeletePoll (owner only; cascades options and votes)
	GET    /polls/mine  → ListMyPolls (newest first, with tallies)

UpdatePoll computes the set difference between the options the poll had
and the options the edit references; dropped options are deleted together
with their votes, and the response reports removed_option_ids and
votes_discarded so clients can warn before calling.

# Voting

	POST /polls/{id}/votes    → SubmitVote
	GET  /polls/{id}/votes/me → HasVoted

SubmitVote checks its preconditions in order (poll exists → option
belongs to poll → no prior vote) but relies on the votes table's
UNIQUE (poll_id, user_id) constraint as the authoritative duplicate
guard. Exactly one of N concurrent duplicate submissions succeeds; the
rest get 409 already_voted, which clients treat as success-equivalent.

# Results

	GET /polls/{id}         → GetPoll (creation order)
	GET /polls/{id}/results → GetResults (ranked, winner flags)
	GET /polls/{id}/live    → LivePoll (websocket refresh triggers)

Aggregation is implemented in aggregate.go:

	results, err := ComputeResults(db, pollID)
	ranked := RankResults(results)

Counts, percentages, and winner flags are recomputed from raw vote rows
on every read; nothing derived is ever stored.
*/
package handlers
