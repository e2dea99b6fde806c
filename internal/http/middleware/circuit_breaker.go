package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yungbote/recipebook-backend/internal/http/response"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

var errServerFailure = errors.New("handler returned 5xx")

type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker counts 5xx responses as failures. While the breaker is open
// requests are answered with 503 without reaching the handler.
func CircuitBreaker(cfg CircuitBreakerConfig, log *logger.Logger, m *observability.Metrics) gin.HandlerFunc {
	cbLog := log.With("middleware", "CircuitBreaker", "breaker", cfg.Name)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			cbLog.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
			m.SetBreakerState(name, float64(to))
		},
	})
	m.SetBreakerState(cfg.Name, float64(gobreaker.StateClosed))

	return func(c *gin.Context) {
		_, err := cb.Execute(func() (any, error) {
			c.Next()
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerFailure
			}
			return nil, nil
		})
		switch {
		case err == nil, errors.Is(err, errServerFailure):
			// The handler already wrote its response.
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			cbLog.Warn("Circuit breaker rejected request", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
			response.RespondError(c, http.StatusServiceUnavailable, "service_unavailable",
				errors.New("service temporarily unavailable"))
		default:
			cbLog.Error("Circuit breaker error", "error", err)
		}
	}
}
