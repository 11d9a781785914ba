package middleware

import (
	"testing"
	"time"
)

func TestCheckIPRateLimit(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 1,
		IPBurst:     3,
	})

	allowed := 0
	for i := 0; i < 10; i++ {
		if lp.CheckIPRateLimit("10.0.0.1") {
			allowed++
		}
	}
	if allowed > 4 {
		t.Errorf("allowed %d immediate requests with burst 3", allowed)
	}

	// A different IP has its own limiter.
	if !lp.CheckIPRateLimit("10.0.0.2") {
		t.Error("fresh IP should not be limited")
	}
}

func TestAccountLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		IPRateLimit:       1000,
		IPBurst:           1000,
	})

	account := "student@campus.edu"
	if lp.IsAccountLocked(account) {
		t.Fatal("account locked before any failures")
	}

	lp.RecordFailure(account)
	lp.RecordFailure(account)
	if lp.IsAccountLocked(account) {
		t.Error("account locked before reaching threshold")
	}

	lp.RecordFailure(account)
	if !lp.IsAccountLocked(account) {
		t.Error("account not locked after threshold failures")
	}

	// Other accounts unaffected.
	if lp.IsAccountLocked("other@campus.edu") {
		t.Error("unrelated account locked")
	}
}

func TestRecordSuccessClearsFailures(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
	})

	account := "student@campus.edu"
	lp.RecordFailure(account)
	lp.RecordSuccess(account)
	lp.RecordFailure(account)

	if lp.IsAccountLocked(account) {
		t.Error("account locked despite successful login resetting the count")
	}
}
