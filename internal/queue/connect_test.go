package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConnectDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{3, 16 * time.Second},
		{4, 30 * time.Second},
		{40, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := connectDelay(tt.attempt); got != tt.want {
			t.Errorf("connectDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDialWith(t *testing.T) {
	t.Parallel()

	noWait := func(int) time.Duration { return 0 }

	t.Run("succeeds after retries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		want := &RabbitMQQueue{}
		q, err := dialWith(context.Background(), nil, 5, noWait, func() (*RabbitMQQueue, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection refused")
			}
			return want, nil
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if q != want || calls != 3 {
			t.Errorf("Expected the third attempt to win, got %d calls", calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := dialWith(context.Background(), nil, 3, noWait, func() (*RabbitMQQueue, error) {
			calls++
			return nil, errors.New("connection refused")
		})
		if err == nil || calls != 3 {
			t.Errorf("Expected an error after 3 attempts, got %v after %d", err, calls)
		}
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := dialWith(ctx, nil, 5, func(int) time.Duration { return time.Hour }, func() (*RabbitMQQueue, error) {
			return nil, errors.New("connection refused")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}
