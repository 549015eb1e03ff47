package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2)
	rl.now = func() time.Time { return now }
	rl.lastClean = now

	if !rl.allow(1) || !rl.allow(1) {
		t.Fatal("前两次应该放行")
	}
	if rl.allow(1) {
		t.Error("第三次应该被限制")
	}
	if !rl.allow(2) {
		t.Error("其他用户不受影响")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow(1) {
		t.Error("窗口过后应该重新放行")
	}
}
