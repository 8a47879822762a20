// Package ratelimit caps how often an identity may perform an operation
// using fixed-window counters kept in a shared Store.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/sirupsen/logrus"
)

// ScopeFriendRequest limits friend request creation.
const ScopeFriendRequest = "friend_request"

// AnonymousIdentity keys callers without an identity. They all share one counter.
const AnonymousIdentity = "anonymous"

// Store counts attempts per key. Increment must check and bump the counter
// atomically and must not count an attempt it rejects.
type Store interface {
	Increment(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Rate is the number of allowed attempts per window.
type Rate struct {
	Limit  int
	Window time.Duration
}

var periods = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "second": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute,
	"h": time.Hour, "hour": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour,
}

// ParseRate reads rates such as "3/minute" or "100/day".
func ParseRate(s string) (Rate, error) {
	num, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: expected <count>/<period>", s)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: count must be a positive integer", s)
	}
	window, ok := periods[strings.ToLower(strings.TrimSpace(period))]
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: unknown period %q", s, period)
	}
	return Rate{Limit: limit, Window: window}, nil
}

// Limiter applies one Rate to every scope it is asked about.
type Limiter struct {
	store Store
	rate  Rate
}

func NewLimiter(store Store, rate Rate) *Limiter {
	return &Limiter{store: store, rate: rate}
}

// Key builds the counter key for scope and identity.
func Key(scope, identity string) string {
	if identity == "" {
		identity = AnonymousIdentity
	}
	return scope + "-" + identity
}

// Allow records an attempt and returns apperrors.ErrRateLimited once the
// identity has used up its window.
func (l *Limiter) Allow(ctx context.Context, scope, identity string) error {
	key := Key(scope, identity)

	allowed, err := l.store.Increment(ctx, key, l.rate.Limit, l.rate.Window)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		logrus.WithFields(logrus.Fields{
			"scope": scope,
			"key":   key,
		}).Warn("Rate limit exceeded")
		return apperrors.ErrRateLimited
	}
	return nil
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration {
	return l.rate.Window
}
