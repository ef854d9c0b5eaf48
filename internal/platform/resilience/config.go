package resilience

import "time"

// CircuitBreakerConfig describes the breaker guarding the match store.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold is the number of consecutive storage failures that
	// opens the circuit.
	FailureThreshold int
	OpenTimeout      time.Duration
	// HalfOpenMaxReq caps trial calls while the circuit is half open.
	HalfOpenMaxReq int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// NormalizeCircuitBreakerConfig fills unset limits from the defaults. Enabled
// is kept as given.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// LogAttrs renders the effective settings as logger key/value pairs.
func (c CircuitBreakerConfig) LogAttrs() []any {
	if !c.Enabled {
		return []any{"enabled", false}
	}
	c = NormalizeCircuitBreakerConfig(c)
	return []any{
		"enabled", true,
		"failure_threshold", c.FailureThreshold,
		"open_timeout", c.OpenTimeout.String(),
		"half_open_max_req", c.HalfOpenMaxReq,
	}
}
