// Package runlock serializes work per key, so that at most one
// attribution run per user is in flight across the process or cluster.
package runlock

import "context"

// takes an exclusive lock on key, blocking until it is free or ctx ends
// the returned release func must be called exactly once
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
