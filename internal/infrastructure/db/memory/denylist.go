package memory

import (
	"context"
	"sync"
	"time"
)

// TokenDenylist keeps revoked token ids until their own expiry. Lapsed ids
// are dropped on lookup and by a periodic sweep on Revoke.
type TokenDenylist struct {
	mu        sync.Mutex
	revoked   map[string]time.Time
	nextSweep time.Time
	now       func() time.Time
}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *TokenDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if !now.Before(d.nextSweep) {
		for id, exp := range d.revoked {
			if !now.Before(exp) {
				delete(d.revoked, id)
			}
		}
		d.nextSweep = now.Add(sweepInterval)
	}
	if !until.After(now) {
		return nil
	}
	d.revoked[tokenID] = until
	return nil
}

func (d *TokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !d.now().Before(until) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
