package models

import "time"

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation    = "validation_error"
	CodeNotFound      = "not_found"
	CodeForbidden     = "forbidden"
	CodeInvalidOption = "invalid_option"
	CodeAlreadyVoted  = "already_voted"
	CodeUnexpected    = "unexpected"
)

// Option count limits enforced at creation and on every edit
const (
	MinOptions = 2
	MaxOptions = 10
)

// Request types

type CreatePollRequest struct {
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// OptionEdit updates an existing option (ID set) or inserts a new one
// (ID empty). Options missing from the edit set are deleted.
type OptionEdit struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

type UpdatePollRequest struct {
	Title    string       `json:"title"`
	Question string       `json:"question"`
	Options  []OptionEdit `json:"options"`
}

type SubmitVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type SubmitVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type UpdatePollResponse struct {
	RemovedOptionIDs []string `json:"removed_option_ids"`
	VotesDiscarded   int      `json:"votes_discarded"`
	Message          string   `json:"message"`
}

type HasVotedResponse struct {
	Voted    bool   `json:"voted"`
	OptionID string `json:"option_id,omitempty"`
}

// Domain types

type Poll struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Question  string    `json:"question"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Option struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	Text      string    `json:"option_text"`
	CreatedAt time.Time `json:"created_at"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Aggregation types (computed on read, never persisted)

// OptionResult is an option annotated with its tally. Percentage is
// rounded to the nearest integer; rounded values may not sum to 100.
type OptionResult struct {
	ID         string `json:"id"`
	Text       string `json:"option_text"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
	Winner     bool   `json:"winner,omitempty"`
}

type PollResults struct {
	Poll       Poll           `json:"poll"`
	Options    []OptionResult `json:"options"`
	TotalVotes int            `json:"total_votes"`
}

// PollSummary is the owner-dashboard view of a poll.
type PollSummary struct {
	Poll       Poll           `json:"poll"`
	Options    []OptionResult `json:"options"`
	TotalVotes int            `json:"total_votes"`
	CreatedAgo string         `json:"created_ago"`
}

// Live update event pushed over the results websocket. Carries no
// tallies; receivers re-fetch the aggregate.
type PollEvent struct {
	Type   string `json:"type"`
	PollID string `json:"poll_id"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
