package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/sqldb"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"matchctl"}, args...))
	return out.String(), err
}

func tempLocation(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "matchctl.db")
}

func TestScheduleListCancel(t *testing.T) {
	db := tempLocation(t)
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	out, err := runCLI(t, "--db", db, "schedule", "-a", "7", "-b", "3", "--start", start.Format(time.RFC3339), "--by", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "scheduled 3 vs 7 at "+start.Format(time.RFC3339))

	_, err = runCLI(t, "--db", db, "schedule", "-a", "3", "-b", "7", "--start", start.Add(time.Hour).Format(time.RFC3339), "--by", "1")
	require.Error(t, err)

	out, err = runCLI(t, "--db", db, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "STARTS AT")
	assert.Equal(t, []string{start.Format(time.RFC3339), "3", "7", "42"}, strings.Fields(lines[1]))

	out, err = runCLI(t, "--db", db, "cancel", "-a", "3", "-b", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled 3 vs 7")

	out, err = runCLI(t, "--db", db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no upcoming matches")

	_, err = runCLI(t, "--db", db, "cancel", "-a", "3", "-b", "7")
	require.Error(t, err)
}

func TestPurge(t *testing.T) {
	db := tempLocation(t)
	now := time.Now().Unix()

	repo, err := sqldb.NewMatchListRepository(context.Background(), db)
	require.NoError(t, err)
	for _, req := range []matchlist.ScheduleRequest{
		{TeamA: 1, TeamB: 2, StartTime: now - 600, Actor: 1, Now: now - 3600},
		{TeamA: 3, TeamB: 4, StartTime: now + 3600, Actor: 1, Now: now},
	} {
		_, err := repo.Schedule(context.Background(), req)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Close())

	out, err := runCLI(t, "--db", db, "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "purged 1 match(es) starting at or before ")
	assert.Contains(t, out, time.Unix(now-600, 0).UTC().Format(time.RFC3339))

	out, err = runCLI(t, "--db", db, "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "purged 0 match(es)")
}

func TestScheduleRejectsBadArgs(t *testing.T) {
	db := tempLocation(t)
	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing team", args: []string{"schedule", "-a", "1", "--start", future, "--by", "1"}},
		{name: "missing start", args: []string{"schedule", "-a", "1", "-b", "2", "--by", "1"}},
		{name: "bad start", args: []string{"schedule", "-a", "1", "-b", "2", "--start", "next week", "--by", "1"}},
		{name: "past start", args: []string{"schedule", "-a", "1", "-b", "2", "--start", "2001-01-01T00:00:00Z", "--by", "1"}},
		{name: "missing actor", args: []string{"schedule", "-a", "1", "-b", "2", "--start", future}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"--db", db}, tc.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestParseKickoff(t *testing.T) {
	got, err := parseKickoff("2030-05-01T18:30:00+07:00", "UTC")
	require.NoError(t, err)
	assert.Equal(t, int64(1903865400), got.Unix())

	got, err = parseKickoff("2030-05-01 18:30", "Asia/Jakarta")
	require.NoError(t, err)
	assert.Equal(t, int64(1903865400), got.Unix())

	_, err = parseKickoff("2030-05-01 18:30", "Mars/Olympus")
	assert.Error(t, err)
}
