// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/danielhkuo/pollboard/models"
)

// ComputeResults builds the read-time aggregate for a poll: every option
// in creation order with its vote count and percentage, plus the total.
// Counts are always recomputed from raw vote rows; there is no stored
// counter to drift or race.
// Returns sql.ErrNoRows if the poll does not exist.
func ComputeResults(db *sql.DB, pollID string) (models.PollResults, error) {
	poll, err := getPoll(db, pollID)
	if err != nil {
		return models.PollResults{}, err
	}

	options, err := getOptions(db, pollID)
	if err != nil {
		return models.PollResults{}, fmt.Errorf("failed to get options: %w", err)
	}

	counts, err := getVoteCounts(db, pollID)
	if err != nil {
		return models.PollResults{}, fmt.Errorf("failed to get vote counts: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	results := make([]models.OptionResult, len(options))
	for i, opt := range options {
		count := counts[opt.ID]
		results[i] = models.OptionResult{
			ID:         opt.ID,
			Text:       opt.Text,
			Votes:      count,
			Percentage: percentage(count, total),
		}
	}

	return models.PollResults{
		Poll:       poll,
		Options:    results,
		TotalVotes: total,
	}, nil
}

// RankResults reorders options by vote count descending and flags the
// winners. Creation order is the tiebreak for equal counts, so ranking
// is deterministic rather than an accident of iteration order. Every
// option at the maximum count is flagged; a poll with no votes has no
// winners.
func RankResults(r models.PollResults) models.PollResults {
	ranked := make([]models.OptionResult, len(r.Options))
	copy(ranked, r.Options)

	// Input is in creation order; a stable sort preserves it among ties
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})

	if r.TotalVotes > 0 && len(ranked) > 0 {
		max := ranked[0].Votes
		for i := range ranked {
			ranked[i].Winner = ranked[i].Votes == max
		}
	}

	r.Options = ranked
	return r
}

// percentage rounds count/total to the nearest whole percent.
// Rounded values may not sum to 100; TotalVotes is authoritative.
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// getPoll retrieves a single poll row
func getPoll(db *sql.DB, pollID string) (models.Poll, error) {
	var poll models.Poll
	err := db.QueryRow(`
		SELECT id, title, question, user_id, created_at
		FROM polls
		WHERE id = $1
	`, pollID).Scan(&poll.ID, &poll.Title, &poll.Question, &poll.UserID, &poll.CreatedAt)
	return poll, err
}

// getOptions retrieves a poll's options in creation order
func getOptions(db *sql.DB, pollID string) ([]models.Option, error) {
	rows, err := db.Query(`
		SELECT id, poll_id, option_text, created_at
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY created_at, id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.CreatedAt); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

// getVoteCounts retrieves per-option vote counts for a poll
func getVoteCounts(db *sql.DB, pollID string) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT option_id, COUNT(*)
		FROM votes
		WHERE poll_id = $1
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var optionID string
		var count int
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, err
		}
		counts[optionID] = count
	}

	return counts, rows.Err()
}
