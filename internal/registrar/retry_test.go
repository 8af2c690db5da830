package registrar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
)

func TestRetryTransientThenSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logr.Discard(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, "op", func() error {
		calls++
		if calls < 3 {
			return &Error{Op: "op", Kind: KindTransient}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logr.Discard(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, "op", func() error {
		calls++
		return &Error{Op: "op", Kind: KindTransient}
	})
	if !IsTransient(err) {
		t.Fatalf("expected transient error after exhaustion, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryNonTransientNotRetried(t *testing.T) {
	for _, kind := range []Kind{KindAuth, KindValidation, KindNotFound} {
		t.Run(kind.String(), func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), logr.Discard(), DefaultRetryPolicy, "op", func() error {
				calls++
				return &Error{Op: "op", Kind: kind}
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if calls != 1 {
				t.Errorf("expected 1 call for %s error, got %d", kind, calls)
			}
		})
	}
}

func TestRetryPlainErrorNotRetried(t *testing.T) {
	calls := 0
	wantErr := errors.New("boom")
	err := Retry(context.Background(), logr.Discard(), DefaultRetryPolicy, "op", func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Retry(ctx, logr.Discard(), RetryPolicy{Attempts: 5, Backoff: time.Minute}, "op", func() error {
		calls++
		return &Error{Op: "op", Kind: KindTransient}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}
