package memory

import (
	"context"
	"testing"
	"time"
)

func TestTokenDenylist_RevokeUntilExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewTokenDenylist()
	d.now = func() time.Time { return now }

	if err := d.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, _ := d.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected jti-1 to be revoked")
	}
	if revoked, _ := d.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatalf("jti-2 was never revoked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := d.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("entry must lapse with the token")
	}
	if len(d.revoked) != 0 {
		t.Fatalf("expired entry not dropped: %v", d.revoked)
	}
}

func TestTokenDenylist_SkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewTokenDenylist()
	d.now = func() time.Time { return now }

	if err := d.Revoke(ctx, "old", now.Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if len(d.revoked) != 0 {
		t.Fatalf("expired token should not be stored")
	}
}

func TestTokenDenylist_RevokeSweepsLapsedIDs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewTokenDenylist()
	d.now = func() time.Time { return now }

	for _, id := range []string{"jti-1", "jti-2", "jti-3"} {
		if err := d.Revoke(ctx, id, now.Add(time.Hour)); err != nil {
			t.Fatalf("Revoke: %v", err)
		}
	}

	now = now.Add(2 * time.Hour)
	if err := d.Revoke(ctx, "jti-4", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if len(d.revoked) != 1 {
		t.Fatalf("expected only jti-4 to remain, got %v", d.revoked)
	}
}
