package matchlist

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		name string
		x, y int64
		want Pair
	}{
		{name: "already ordered", x: 3, y: 5, want: Pair{TeamAID: 3, TeamBID: 5}},
		{name: "reversed", x: 5, y: 3, want: Pair{TeamAID: 3, TeamBID: 5}},
		{name: "equal", x: 7, y: 7, want: Pair{TeamAID: 7, TeamBID: 7}},
		{name: "negative", x: 1, y: -4, want: Pair{TeamAID: -4, TeamBID: 1}},
		{name: "snowflakes", x: 1327047313482317918, y: 1320147480482021416, want: Pair{TeamAID: 1320147480482021416, TeamBID: 1327047313482317918}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanonicalPair(tc.x, tc.y); got != tc.want {
				t.Fatalf("unexpected pair: got=%+v want=%+v", got, tc.want)
			}
			if got := CanonicalPair(tc.y, tc.x); got != tc.want {
				t.Fatalf("pair depends on argument order: got=%+v want=%+v", got, tc.want)
			}
		})
	}
}

func TestPageNormalize(t *testing.T) {
	t.Run("defaults limit", func(t *testing.T) {
		got := Page{}.Normalize()
		if got.Limit != DefaultPageSize || got.Offset != 0 {
			t.Fatalf("unexpected page: %+v", got)
		}
	})

	t.Run("caps limit", func(t *testing.T) {
		got := Page{Limit: 5000, Offset: 3}.Normalize()
		if got.Limit != MaxPageSize || got.Offset != 3 {
			t.Fatalf("unexpected page: %+v", got)
		}
	})

	t.Run("clamps negative offset", func(t *testing.T) {
		got := Page{Limit: 2, Offset: -1}.Normalize()
		if got.Limit != 2 || got.Offset != 0 {
			t.Fatalf("unexpected page: %+v", got)
		}
	})
}

func TestStorageFailure_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := StorageFailure(cause, "insert scheduled match")

	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable mark, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected original cause to be kept, got %v", err)
	}
	if StorageFailure(nil, "noop") != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(fmt.Errorf("query: %w", context.DeadlineExceeded)) {
		t.Fatalf("expected deadline to be a timeout")
	}
	if IsTimeout(errors.New("constraint failed")) {
		t.Fatalf("expected plain error not to be a timeout")
	}
}

func TestValidateScheduleRequest(t *testing.T) {
	if err := ValidateScheduleRequest(ScheduleRequest{TeamA: 1, TeamB: 2, StartTime: 10, Now: 5}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if err := ValidateScheduleRequest(ScheduleRequest{StartTime: 0, Now: 5}); !errors.Is(err, ErrInvalidFixture) {
		t.Fatalf("expected ErrInvalidFixture for zero start, got %v", err)
	}
	if err := ValidateScheduleRequest(ScheduleRequest{StartTime: 10, Now: -1}); !errors.Is(err, ErrInvalidFixture) {
		t.Fatalf("expected ErrInvalidFixture for negative now, got %v", err)
	}
}

func TestStorageFailure_DoesNotDoubleWrap(t *testing.T) {
	inner := StorageFailure(errors.New("database is locked"), "begin tx")
	outer := StorageFailure(inner, "schedule match")

	if !errors.Is(outer, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", outer)
	}
	if errors.Is(outer, ErrDuplicateFixture) {
		t.Fatalf("did not expect duplicate fixture match")
	}
	want := "schedule match: begin tx: database is locked"
	if outer.Error() != want {
		t.Fatalf("unexpected message: got=%q want=%q", outer.Error(), want)
	}
}
