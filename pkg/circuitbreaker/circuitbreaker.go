package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// New returns the breaker used around a channel sender: three consecutive
// failures open it, so an unavailable provider fails fast instead of timing
// out once per obligation.
func New(name string) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     1 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.TotalFailures >= 3
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
