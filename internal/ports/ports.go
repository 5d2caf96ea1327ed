package ports

import (
	"context"
	"time"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
	"github.com/CortinezO98/MisVigencias/internal/model"
)

// Result is the successful outcome of a send, carrying the
// provider-assigned identifier and a human-readable detail for the audit log.
type Result struct {
	ProviderID string
	Detail     string
}

// ObligationSource enumerates the active obligations with owner and
// preferences loaded. A failure here aborts the run before any send.
type ObligationSource interface {
	FetchActive(ctx context.Context) ([]*model.Obligation, error)
}

// LogRecorder appends one audit entry per evaluated (obligation, channel).
type LogRecorder interface {
	Record(ctx context.Context, entry model.LogEntry) error
}

// Sender is one delivery channel capability.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) (Result, error)
}

// PushSender fans one reminder out to every registered device of an owner.
// Malformed tokens come back in the second return for deactivation.
type PushSender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (Result, []string, error)
}

// TokenRegistry deactivates stale or malformed push tokens; registration
// itself belongs to the API collaborator, not the engine.
type TokenRegistry interface {
	DeactivateToken(ctx context.Context, token string) error
}

// RunGuard answers whether a (obligation, channel, date) notification was
// already claimed today. FirstToday must be atomic: it claims the key and
// reports whether this caller won it.
type RunGuard interface {
	FirstToday(ctx context.Context, obligationID int64, channel internaltypes.Channel, day time.Time) (bool, error)
}
