package httpclient

import (
	"time"

	"staygo/config"

	circuit "github.com/rubyist/circuitbreaker"
)

func InitCircuitBreaker(cfg *config.HttpClientConfig, breakerType string) *circuit.Breaker {
	switch breakerType {
	case "consecutive":
		return circuit.NewConsecutiveBreaker(cfg.Threshold)
	case "rate":
		return circuit.NewRateBreaker(cfg.ErrorRatePercentage, 100)
	default:
		return circuit.NewThresholdBreaker(cfg.Threshold)
	}
}

// InitHttpClient wraps outbound calls (user directory, payment provider) with
// the breaker and a hard timeout. Timed-out payment calls must not guess an
// outcome; callers leave the payment row pending.
func InitHttpClient(cfg *config.HttpClientConfig, cb *circuit.Breaker) *circuit.HTTPClient {
	timeout := time.Duration(cfg.TimeoutSecond) * time.Second
	return circuit.NewHTTPClientWithBreaker(cb, timeout, nil)
}
