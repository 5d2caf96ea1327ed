package senders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CortinezO98/MisVigencias/internal/ports"
)

// QueuePublisher is the transport behind the push channel; satisfied by
// pushqueue.Publisher.
type QueuePublisher interface {
	PublishWithRetry(ctx context.Context, body []byte) error
}

// PushMessage is the payload the mobile gateway consumes, one per device.
type PushMessage struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushSender fans one reminder out to every registered device token by
// publishing to the push queue. Tokens that are obviously malformed are
// reported back so the caller can deactivate them; they never fail the send.
type PushSender struct {
	publisher QueuePublisher
}

func NewPushSender(publisher QueuePublisher) *PushSender {
	return &PushSender{publisher: publisher}
}

func (s *PushSender) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (ports.Result, []string, error) {
	var bad []string
	published := 0

	for _, token := range tokens {
		if !validToken(token) {
			bad = append(bad, token)
			continue
		}

		payload, err := json.Marshal(PushMessage{
			Token: token,
			Title: title,
			Body:  body,
			Data:  data,
		})
		if err != nil {
			return ports.Result{}, bad, fmt.Errorf("%w: marshal push message: %v", ErrProvider, err)
		}

		if err := s.publisher.PublishWithRetry(ctx, payload); err != nil {
			if ctx.Err() != nil {
				return ports.Result{}, bad, fmt.Errorf("%w: push queue", ErrTimeout)
			}
			return ports.Result{}, bad, fmt.Errorf("%w: publish push: %v", ErrProvider, err)
		}
		published++
	}

	if published == 0 {
		return ports.Result{}, bad, fmt.Errorf("%w: no valid device tokens", ErrInvalidRecipient)
	}

	return ports.Result{
		Detail: fmt.Sprintf("Push encolado para %d dispositivo(s)", published),
	}, bad, nil
}

func validToken(token string) bool {
	return len(token) >= 16 && !strings.ContainsAny(token, " \t\n")
}
