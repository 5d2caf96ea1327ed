package senders

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/CortinezO98/MisVigencias/internal/ports"
)

// ChannelSender is the capability the breaker wraps; it matches the Send
// signature of every sender in this package.
type ChannelSender interface {
	Send(ctx context.Context, recipient, subject, body string) (ports.Result, error)
}

// BreakerSender decorates a sender with a circuit breaker. While the breaker
// is open every send fails immediately with ErrProvider, which the dispatch
// pass records as FAILED and moves on.
type BreakerSender struct {
	inner ChannelSender
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerSender(inner ChannelSender, cb *gobreaker.CircuitBreaker) *BreakerSender {
	return &BreakerSender{inner: inner, cb: cb}
}

func (s *BreakerSender) Send(ctx context.Context, recipient, subject, body string) (ports.Result, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Send(ctx, recipient, subject, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ports.Result{}, fmt.Errorf("%w: canal no disponible: %v", ErrProvider, err)
		}
		return ports.Result{}, err
	}
	return result.(ports.Result), nil
}
