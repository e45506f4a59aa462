package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"lg/adaptive-tdee-go-api/expenditure"
)

// estimateCache keeps the last estimate per user. An entry is reused only
// while its fingerprint (the loaded inputs plus the current hour) matches.
// Only the computation is cached; observations are loaded on every call.
type estimateCache struct {
	estimator *expenditure.Estimator
	now       func() time.Time

	mu      sync.Mutex
	entries map[int]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	fingerprint [blake2b.Size256]byte
	estimate    expenditure.ExpenditureEstimate
}

func newEstimateCache(e *expenditure.Estimator, now func() time.Time) *estimateCache {
	return &estimateCache{estimator: e, now: now, entries: map[int]cacheEntry{}}
}

type cacheResult struct {
	estimate expenditure.ExpenditureEstimate
	hit      bool
}

// loadTimeout bounds a shared load once it is detached from the caller that
// started it.
const loadTimeout = 10 * time.Second

// get returns the user's estimate for the window. Concurrent calls for the
// same user and window share one load and computation. The shared load does
// not inherit the first caller's cancellation; each caller stops waiting when
// its own ctx is done.
func (c *estimateCache) get(ctx context.Context, userID, weeks int) (expenditure.ExpenditureEstimate, bool, error) {
	key := fmt.Sprintf("%d:%d", userID, weeks)
	ch := c.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		in, err := c.estimator.Load(lctx, userID, weeks)
		if err != nil {
			return nil, err
		}
		fp, err := fingerprint(in, c.now())
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		e, ok := c.entries[userID]
		c.mu.Unlock()
		if ok && e.fingerprint == fp {
			return cacheResult{estimate: e.estimate, hit: true}, nil
		}

		est := c.estimator.Compute(in)
		c.mu.Lock()
		c.entries[userID] = cacheEntry{fingerprint: fp, estimate: est}
		c.mu.Unlock()
		return cacheResult{estimate: est}, nil
	})

	select {
	case <-ctx.Done():
		return expenditure.ExpenditureEstimate{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return expenditure.ExpenditureEstimate{}, false, res.Err
		}
		r := res.Val.(cacheResult)
		return r.estimate, r.hit, nil
	}
}

// invalidate drops the user's entry. Call after any write to their weight
// log, intake log or goal settings.
func (c *estimateCache) invalidate(userID int) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// fingerprint hashes the inputs together with the hour bucket of now, so an
// entry also expires on the hour.
func fingerprint(in expenditure.Inputs, now time.Time) ([blake2b.Size256]byte, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return [blake2b.Size256]byte{}, fmt.Errorf("fingerprint inputs: %w", err)
	}
	var bucket [8]byte
	binary.BigEndian.PutUint64(bucket[:], uint64(now.Truncate(time.Hour).Unix()))
	return blake2b.Sum256(append(b, bucket[:]...)), nil
}
