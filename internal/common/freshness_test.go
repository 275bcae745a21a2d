package common

import (
	"testing"
	"time"
)

func TestIsFresh(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if IsFresh(time.Time{}, time.Hour, now) {
		t.Error("zero time should never be fresh")
	}
	if !IsFresh(now.Add(-time.Minute), FreshnessStoredPrice, now) {
		t.Error("one minute old price should be fresh")
	}
	if IsFresh(now.Add(-FreshnessStoredPrice), FreshnessStoredPrice, now) {
		t.Error("price exactly at the TTL should be stale")
	}
}
