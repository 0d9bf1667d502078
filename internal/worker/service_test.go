package worker

import (
	"testing"
	"time"
)

func TestNextRunAt(t *testing.T) {
	loc := time.UTC

	// 当天整点尚未到达，取当天
	now := time.Date(2025, 9, 15, 1, 30, 0, 0, loc)
	next := nextRunAt(now, 3)
	want := time.Date(2025, 9, 15, 3, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}

	// 当天整点已过，顺延到次日
	now = time.Date(2025, 9, 15, 5, 0, 1, 0, loc)
	next = nextRunAt(now, 3)
	want = time.Date(2025, 9, 16, 3, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}

	// 恰好等于整点时也顺延，避免同刻重复触发
	now = time.Date(2025, 9, 15, 3, 0, 0, 0, loc)
	next = nextRunAt(now, 3)
	want = time.Date(2025, 9, 16, 3, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}
