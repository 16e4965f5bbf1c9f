// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify delivers poll-change events to live result views.

Events are refresh triggers, not data: a PollEvent names the poll and the
kind of change ("vote" or "poll"), and the receiver re-runs the
aggregation read. The database stays the single source of truth, so a
dropped event can never corrupt a tally - the next refetch repairs it.

# Hub

Hub is the in-process fan-out: handlers subscribe per poll, the vote and
lifecycle writers call PollChanged after commit.

	ch := hub.Subscribe(pollID)
	defer hub.Unsubscribe(pollID, ch)

# RedisBridge

With REDIS_URL configured, RedisBridge publishes events through a Redis
pub/sub channel and relays remote events into the local hub, so a
multi-instance deployment notifies every connected viewer regardless of
which instance recorded the vote.
*/
package notify
