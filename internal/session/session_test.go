package session

import (
	"context"
	"testing"
	"time"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/models"
)

const testSecret = "test-secret-with-at-least-32-characters!!"

func TestIssueAndParse(t *testing.T) {
	m := NewManager(testSecret, time.Hour, NewMemoryRevoker())
	p := access.Principal{Kind: access.KindAdmin, ID: "luantorres", AdminRole: models.AdminRoleMaster}

	token, exp, err := m.Issue(p)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := m.Parse(context.Background(), token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "luantorres" || claims.Kind != access.KindAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	a := NewManager(testSecret, time.Hour, NewMemoryRevoker())
	b := NewManager("another-secret-with-at-least-32-chars!!", time.Hour, NewMemoryRevoker())

	token, _, err := a.Issue(access.Principal{Kind: access.KindSupervisor, ID: "SUP001"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Parse(context.Background(), token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager(testSecret, time.Minute, NewMemoryRevoker())
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }
	token, _, err := m.Issue(access.Principal{Kind: access.KindSupervisor, ID: "SUP001"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	m.now = time.Now
	if _, err := m.Parse(context.Background(), token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testSecret, time.Hour, NewMemoryRevoker())
	token, _, _ := m.Issue(access.Principal{Kind: access.KindSupervisor, ID: "SUP001"})

	claims, err := m.Parse(ctx, token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := m.Revoke(ctx, claims); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := m.Parse(ctx, token); err == nil {
		t.Fatal("expected revoked token to be rejected")
	}
}

func TestMemoryRevokerForgetsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }

	_ = r.Revoke(ctx, "old", now.Add(time.Minute))
	now = now.Add(2 * time.Minute)
	if revoked, _ := r.IsRevoked(ctx, "old"); revoked {
		t.Fatal("expired revocation should not apply")
	}
	_ = r.Revoke(ctx, "new", now.Add(time.Minute))
	if _, ok := r.revoked["old"]; ok {
		t.Fatal("expired entry should be purged on next revoke")
	}
}
