// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the
Pollboard API.

# Domain Types

  - Poll: a question with an owner and a creation time
  - Option: one selectable answer belonging to a poll
  - Vote: one user's selection of one option for one poll

# Aggregation Types

Vote tallies are computed at read time from raw vote rows:

  - OptionResult: option plus count, percentage, winner flag
  - PollResults: poll plus per-option results and total votes
  - PollSummary: PollResults plus a humanized age, for owner listings

# Error Codes

ErrorResponse carries a machine-readable Code alongside the HTTP status
text so clients can branch without parsing messages:

	validation_error, not_found, forbidden,
	invalid_option, already_voted, unexpected

already_voted is an expected outcome, not a failure: clients receiving it
should switch to the results view.
*/
package models
