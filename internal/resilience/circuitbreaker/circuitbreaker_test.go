package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

func TestExecute_Success(t *testing.T) {
	cb := New(DefaultConfig("test"))

	result, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.(string) != "ok" {
		t.Errorf("expected 'ok', got %v", result)
	}
}

func TestExecute_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := LocalModelConfig()
	cb := New(cfg)

	boom := errors.New("model host down")
	for i := 0; i < int(cfg.MinRequests); i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, boom
		})
	}

	if !cb.IsOpen() {
		t.Fatalf("expected breaker open after %d consecutive failures, state=%s",
			cfg.MinRequests, cb.State())
	}

	_, err := cb.Execute(func() (interface{}, error) {
		t.Error("function must not run while breaker is open")
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
}

func TestExecute_StaysClosedBelowMinRequests(t *testing.T) {
	cb := New(LocalModelConfig())

	_, _ = cb.Execute(func() (interface{}, error) {
		return nil, errors.New("one-off failure")
	})

	if cb.IsOpen() {
		t.Error("breaker must not trip on a single failure")
	}
}

func TestName(t *testing.T) {
	cb := New(LocalModelConfig())
	if cb.Name() != "local-model" {
		t.Errorf("expected name 'local-model', got %q", cb.Name())
	}
}
