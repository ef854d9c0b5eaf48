package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("start_time", "team_a_id").
		From("scheduled_matches").
		Where(Gt("start_time", int64(100))).
		OrderBy("start_time ASC", "team_a_id ASC").
		Limit(10).
		Offset(20).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT start_time, team_a_id FROM scheduled_matches WHERE start_time > ? ORDER BY start_time ASC, team_a_id ASC LIMIT 10 OFFSET 20"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(100) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_OffsetWithoutLimit(t *testing.T) {
	if _, _, err := Select("*").From("scheduled_matches").Offset(5).ToSQL(); err == nil {
		t.Fatalf("expected error for offset without limit")
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("scheduled_matches").
		Columns("team_a_id", "team_b_id").
		Values(int64(3), int64(5)).
		Suffix("RETURNING team_a_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO scheduled_matches (team_a_id, team_b_id) VALUES (?, ?) RETURNING team_a_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != int64(5) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("scheduled_matches").
		Columns("team_a_id", "team_b_id").
		Values(int64(3)).
		ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("scheduled_matches").
		Where(Eq("team_a_id", int64(3)), Eq("team_b_id", int64(5))).
		Suffix("RETURNING start_time").
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM scheduled_matches WHERE team_a_id = ? AND team_b_id = ? RETURNING start_time"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != int64(5) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder_RequiresCondition(t *testing.T) {
	if _, _, err := DeleteFrom("scheduled_matches").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}
