package matchlist

import (
	"cmp"
	"time"
)

const (
	// DefaultPageSize is used when a listing does not ask for a limit.
	DefaultPageSize = 10
	// MaxPageSize bounds a single listing response.
	MaxPageSize = 100
)

// ScheduledMatch is one persisted fixture between two teams.
// TeamAID is always the smaller team id.
type ScheduledMatch struct {
	StartTime   int64
	TeamAID     int64
	TeamBID     int64
	ScheduledAt int64
	ScheduledBy int64
}

func (m ScheduledMatch) Pair() Pair {
	return Pair{TeamAID: m.TeamAID, TeamBID: m.TeamBID}
}

func (m ScheduledMatch) StartsAt() time.Time {
	return time.Unix(m.StartTime, 0).UTC()
}

// CompareByStart orders fixtures by start time, then by pair.
func CompareByStart(a, b ScheduledMatch) int {
	if c := cmp.Compare(a.StartTime, b.StartTime); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TeamAID, b.TeamAID); c != 0 {
		return c
	}
	return cmp.Compare(a.TeamBID, b.TeamBID)
}

// Pair is the canonical key of a fixture.
type Pair struct {
	TeamAID int64
	TeamBID int64
}

// CanonicalPair orders two team ids so the smaller one comes first.
// Every read and write keyed by teams must go through it.
func CanonicalPair(x, y int64) Pair {
	if x > y {
		x, y = y, x
	}
	return Pair{TeamAID: x, TeamBID: y}
}

// ScheduleRequest carries the values persisted by Schedule.
// Now becomes the row's ScheduledAt.
type ScheduleRequest struct {
	TeamA     int64
	TeamB     int64
	StartTime int64
	Actor     int64
	Now       int64
}

// Page selects a window of an ordered listing.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
