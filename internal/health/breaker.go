package health

import (
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/tmdbcat/tmdbcat/internal/metrics"
)

// BreakerListener returns a circuit breaker state listener that mirrors the
// breaker of provider id into the health service and the breaker gauge.
// An open breaker is an error, a half-open one a warning.
func (s *Service) BreakerListener(id string) func(name string, from, to gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		metrics.SetBreakerState(id, int(to))

		switch to {
		case gobreaker.StateOpen:
			s.SetError(CategoryMetadata, id, fmt.Sprintf("%s is failing, requests are suspended", name))
		case gobreaker.StateHalfOpen:
			s.SetWarning(CategoryMetadata, id, fmt.Sprintf("%s is recovering, probing with limited requests", name))
		default:
			s.ClearStatus(CategoryMetadata, id)
		}
	}
}
