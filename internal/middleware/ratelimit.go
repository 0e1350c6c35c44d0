package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"studymate-backend/internal/services"
)

// windowCounter increments the hit counter for key in the current window.
type windowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisWindowCounter struct {
	client *redis.Client
}

func NewRedisWindowCounter(client *redis.Client) *RedisWindowCounter {
	return &RedisWindowCounter{client: client}
}

func (c *RedisWindowCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimiter is a fixed-window limiter keyed by client IP. Counter errors
// fail open.
type RateLimiter struct {
	counter windowCounter
	prefix  string
	limit   int
	window  time.Duration
	logger  *log.Logger
	now     func() time.Time
}

func NewRateLimiter(counter windowCounter, prefix string, limit int, window time.Duration, logger *log.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		prefix:  prefix,
		limit:   limit,
		window:  window,
		logger:  logger,
		now:     time.Now,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, err := rl.counter.Incr(r.Context(), rl.key(clientIP(r)), rl.window)
		if err != nil {
			rl.logger.Warn("rate limit counter unavailable", "err", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(rl.limit) {
			writeError(w, http.StatusTooManyRequests, string(services.ErrRateLimited.Kind), services.ErrRateLimited.Message, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// key buckets hits into the window that contains now.
func (rl *RateLimiter) key(ip string) string {
	secs := int64(rl.window / time.Second)
	if secs < 1 {
		secs = 1
	}
	bucket := rl.now().Unix() / secs
	return fmt.Sprintf("ratelimit:%s:%s:%d", rl.prefix, ip, bucket)
}

// clientIP strips the port from RemoteAddr; RealIP has already applied
// forwarding headers by the time this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
