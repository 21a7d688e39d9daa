package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestPolicy_Execute_SucceedsFirstTry(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	calls := 0
	err := policy.Execute(context.Background(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestPolicy_Execute_RetriesTransient(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	calls := 0
	err := policy.Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return Transient(errors.New("connection reset"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestPolicy_Execute_PermanentAbortsImmediately(t *testing.T) {
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	calls := 0
	err := policy.Execute(context.Background(), func() error {
		calls++
		return Permanent(errors.New("content rejected"))
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for permanent failure, got %d", calls)
	}
	if KindOf(err) != KindPermanent {
		t.Errorf("Expected permanent kind, got %s", KindOf(err))
	}
}

func TestPolicy_Execute_ExhaustionWrapsKind(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	calls := 0
	err := policy.Execute(context.Background(), func() error {
		calls++
		return Transient(errors.New("rate limited"))
	})

	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if KindOf(err) != KindExhausted {
		t.Errorf("Expected exhausted kind, got %s", KindOf(err))
	}
}

func TestPolicy_Execute_UnclassifiedTreatedAsTransient(t *testing.T) {
	policy := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	calls := 0
	err := policy.Execute(context.Background(), func() error {
		calls++
		return errors.New("some network hiccup")
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestFromHTTPStatus(t *testing.T) {
	base := errors.New("HTTP error")

	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, KindTransient},
		{http.StatusInternalServerError, KindTransient},
		{http.StatusBadGateway, KindTransient},
		{http.StatusBadRequest, KindPermanent},
		{http.StatusNotFound, KindPermanent},
		{http.StatusUnauthorized, KindPermanent},
	}

	for _, tc := range tests {
		err := FromHTTPStatus(tc.status, base)
		if KindOf(err) != tc.want {
			t.Errorf("Status %d: expected %s, got %s", tc.status, tc.want, KindOf(err))
		}
	}
}

func TestFromHTTPStatus_NilError(t *testing.T) {
	if err := FromHTTPStatus(500, nil); err != nil {
		t.Errorf("Expected nil for nil error, got %v", err)
	}
}
