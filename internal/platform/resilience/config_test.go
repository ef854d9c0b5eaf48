package resilience

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeCircuitBreakerConfig(t *testing.T) {
	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: false, FailureThreshold: 3})
	want := CircuitBreakerConfig{Enabled: false, FailureThreshold: 3, OpenTimeout: 15 * time.Second, HalfOpenMaxReq: 2}
	if got != want {
		t.Fatalf("unexpected config: got=%+v want=%+v", got, want)
	}
}

func TestCircuitBreakerConfig_LogAttrs(t *testing.T) {
	if got := (CircuitBreakerConfig{}).LogAttrs(); !reflect.DeepEqual(got, []any{"enabled", false}) {
		t.Fatalf("unexpected disabled attrs: %+v", got)
	}

	got := CircuitBreakerConfig{Enabled: true, OpenTimeout: time.Minute}.LogAttrs()
	want := []any{"enabled", true, "failure_threshold", 5, "open_timeout", "1m0s", "half_open_max_req", 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected attrs: got=%+v want=%+v", got, want)
	}
}
