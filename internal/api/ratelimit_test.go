package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHourlyLimiterEnforcesBudget(t *testing.T) {
	l := NewHourlyLimiter(3)
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("key-a", now))
	}
	assert.False(t, l.Allow("key-a", now))
}

func TestHourlyLimiterKeysAreIndependent(t *testing.T) {
	l := NewHourlyLimiter(1)
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)

	assert.True(t, l.Allow("key-a", now))
	assert.False(t, l.Allow("key-a", now))
	assert.True(t, l.Allow("key-b", now))
}

func TestHourlyLimiterResetsOnHourRollover(t *testing.T) {
	l := NewHourlyLimiter(1)
	now := time.Date(2026, 3, 10, 9, 59, 0, 0, time.UTC)

	assert.True(t, l.Allow("key-a", now))
	assert.False(t, l.Allow("key-a", now))

	nextHour := now.Add(2 * time.Minute)
	assert.True(t, l.Allow("key-a", nextHour))
}
