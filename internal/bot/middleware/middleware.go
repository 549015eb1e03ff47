// Package middleware Bot 中间件
package middleware

import (
	"runtime/debug"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/smysle/fbdl-go/internal/config"
	"github.com/smysle/fbdl-go/pkg/logger"
)

// Logger 日志中间件
func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if user := c.Sender(); user != nil {
				logger.Debug().
					Int64("user_id", user.ID).
					Str("username", user.Username).
					Str("text", c.Text()).
					Msg("收到消息")
			}
			return next(c)
		}
	}
}

// Recover 恢复中间件
func Recover() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().
						Interface("panic", r).
						Str("stack", string(debug.Stack())).
						Msg("处理器 panic")
					err = c.Send("❌ Something went wrong. Please try again later.")
				}
			}()
			return next(c)
		}
	}
}

// OwnerOnly Owner 权限中间件
func OwnerOnly() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return nil
			}
			if !config.Get().IsOwner(user.ID) {
				return c.Send("❌ This command is for the bot owner only.")
			}
			return next(c)
		}
	}
}

// rateLimitEntry 速率限制条目
type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// rateLimiter 固定窗口速率限制器
type rateLimiter struct {
	mu        sync.Mutex
	entries   map[int64]*rateLimitEntry
	limit     int
	window    time.Duration
	lastClean time.Time
	now       func() time.Time
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	return &rateLimiter{
		entries:   make(map[int64]*rateLimitEntry),
		limit:     requestsPerMinute,
		window:    time.Minute,
		lastClean: time.Now(),
		now:       time.Now,
	}
}

// allow 检查是否允许请求
func (rl *rateLimiter) allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// 定期清理过期条目
	if now.Sub(rl.lastClean) > 5*time.Minute {
		for id, entry := range rl.entries {
			if now.After(entry.resetTime) {
				delete(rl.entries, id)
			}
		}
		rl.lastClean = now
	}

	entry, ok := rl.entries[userID]
	if !ok || now.After(entry.resetTime) {
		rl.entries[userID] = &rateLimitEntry{count: 1, resetTime: now.Add(rl.window)}
		return true
	}
	if entry.count >= rl.limit {
		return false
	}
	entry.count++
	return true
}

// RateLimit 限制每个用户每分钟的解析次数，limit <= 0 时不限制
func RateLimit(requestsPerMinute int) tele.MiddlewareFunc {
	limiter := newRateLimiter(requestsPerMinute)

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || requestsPerMinute <= 0 || config.Get().IsOwner(user.ID) {
				return next(c)
			}

			if !limiter.allow(user.ID) {
				logger.Warn().
					Int64("user_id", user.ID).
					Int("limit", requestsPerMinute).
					Msg("用户触发速率限制")
				return c.Send("⏳ Too many requests. Please wait a minute and try again.")
			}
			return next(c)
		}
	}
}
