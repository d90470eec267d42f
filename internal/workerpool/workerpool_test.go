package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunCallsEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var sum int64

	err := Run(context.Background(), 2, items, func(_ context.Context, n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum != 15 {
		t.Errorf("sum = %d, want 15", sum)
	}
}

func TestRunAbortsOnFirstError(t *testing.T) {
	items := []string{"a", "bad", "c"}
	boom := errors.New("boom")

	err := Run(context.Background(), 4, items, func(_ context.Context, s string) error {
		if s == "bad" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestRunDefaultsCapWhenZero(t *testing.T) {
	items := make([]int, 20)
	err := Run(context.Background(), 0, items, func(_ context.Context, _ int) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
}
