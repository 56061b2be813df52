package api

import (
	"sync"
	"time"
)

// HourlyLimiter counts requests per key in hour buckets. Buckets from past
// hours are discarded when the hour rolls over.
type HourlyLimiter struct {
	mu     sync.Mutex
	limit  int
	hour   string
	counts map[string]int
}

func NewHourlyLimiter(limit int) *HourlyLimiter {
	return &HourlyLimiter{
		limit:  limit,
		counts: make(map[string]int),
	}
}

// Allow reports whether key has budget left in the current hour and
// consumes one unit when it does.
func (l *HourlyLimiter) Allow(key string, now time.Time) bool {
	hour := now.Format("2006010215")

	l.mu.Lock()
	defer l.mu.Unlock()

	if hour != l.hour {
		l.hour = hour
		l.counts = make(map[string]int)
	}
	if l.counts[key] >= l.limit {
		return false
	}
	l.counts[key]++
	return true
}
