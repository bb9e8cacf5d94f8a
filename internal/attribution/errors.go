package attribution

import (
	"errors"
	"fmt"
)

var (
	// the per-user run lock could not be taken before the context ended
	ErrLockUnavailable = errors.New("attribution run already in progress")
)

// reading run inputs or taking the run lock failed; nothing was written
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("attribution fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// applying a run failed; the previous attribution set is still in place
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("attribution persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
