package sqldb

import (
	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	qb "github.com/riskibarqy/matchlist/internal/platform/querybuilder"
)

const scheduledMatchesTable = "scheduled_matches"

var (
	scheduledMatchColumns   = qb.MustModelColumns(scheduledMatchTableModel{})
	returningScheduledMatch = qb.Returning(scheduledMatchColumns...)
)

type scheduledMatchTableModel struct {
	StartTime   int64 `db:"start_time"`
	TeamAID     int64 `db:"team_a_id"`
	TeamBID     int64 `db:"team_b_id"`
	ScheduledAt int64 `db:"scheduled_at"`
	ScheduledBy int64 `db:"scheduled_by"`
}

func (m scheduledMatchTableModel) toDomain() matchlist.ScheduledMatch {
	return matchlist.ScheduledMatch{
		StartTime:   m.StartTime,
		TeamAID:     m.TeamAID,
		TeamBID:     m.TeamBID,
		ScheduledAt: m.ScheduledAt,
		ScheduledBy: m.ScheduledBy,
	}
}

func toDomainMatches(rows []scheduledMatchTableModel) []matchlist.ScheduledMatch {
	out := make([]matchlist.ScheduledMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
