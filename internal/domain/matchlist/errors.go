package matchlist

import (
	"context"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrDuplicateFixture   = crerr.New("fixture between these teams is already scheduled")
	ErrFixtureNotFound    = crerr.New("fixture between these teams does not exist")
	ErrStorageUnavailable = crerr.New("match list storage unavailable")
	ErrInvalidFixture     = crerr.New("invalid fixture")
)

type storageError struct {
	cause error
}

func (e *storageError) Error() string { return e.cause.Error() }

func (e *storageError) Unwrap() error { return e.cause }

func (e *storageError) Is(target error) bool { return target == ErrStorageUnavailable }

// StorageFailure wraps a store error so that it matches ErrStorageUnavailable
// while keeping the original cause for logs.
func StorageFailure(err error, msg string) error {
	if err == nil {
		return nil
	}
	if crerr.Is(err, ErrStorageUnavailable) {
		return crerr.Wrap(err, msg)
	}
	return &storageError{cause: crerr.Wrap(err, msg)}
}

// IsTimeout reports whether err comes from an expired or cancelled context.
func IsTimeout(err error) bool {
	return crerr.Is(err, context.DeadlineExceeded) || crerr.Is(err, context.Canceled)
}

func ValidateScheduleRequest(req ScheduleRequest) error {
	if req.StartTime <= 0 {
		return crerr.Wrapf(ErrInvalidFixture, "start_time must be > 0, got %d", req.StartTime)
	}
	if req.Now <= 0 {
		return crerr.Wrapf(ErrInvalidFixture, "scheduled_at must be > 0, got %d", req.Now)
	}
	return nil
}
