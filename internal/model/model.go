package model

import (
	"time"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
)

// Obligation is one tracked vehicle document with its due date and the
// per-obligation reminder offset flags. Owner and vehicle are loaded eagerly
// so the dispatch loop never does per-item lookups.
type Obligation struct {
	ID             int64                      `json:"id" db:"id"`
	Kind           internaltypes.DocumentKind `json:"kind" db:"tipo"`
	DueDate        time.Time                  `json:"due_date" db:"fecha_vencimiento"` // calendar date, no time component
	Active         bool                       `json:"active" db:"activo"`
	R30            bool                       `json:"r30" db:"r30"`
	R15            bool                       `json:"r15" db:"r15"`
	R7             bool                       `json:"r7" db:"r7"`
	R1             bool                       `json:"r1" db:"r1"`
	LastNotifiedAt *time.Time                 `json:"last_notified_at,omitempty" db:"last_notified_at"` // informational only

	Vehicle Vehicle `json:"vehicle"`
	Owner   Owner   `json:"owner"`
}

type Vehicle struct {
	Alias string `json:"alias" db:"alias"`
	Plate string `json:"plate" db:"plate"`
}

// Owner carries the notification preferences of the obligation's user.
// NotificationDays is captured from the settings form, but delivery keys off
// the per-obligation r30/r15/r7/r1 flags; the two mechanisms coexist.
type Owner struct {
	ID               int64                  `json:"id" db:"owner_id"`
	Username         string                 `json:"username" db:"username"`
	Email            string                 `json:"email" db:"email"`
	Plan             internaltypes.PlanTier `json:"plan" db:"plan"`
	Phone            string                 `json:"phone" db:"phone"`
	WhatsAppEnabled  bool                   `json:"whatsapp_enabled" db:"whatsapp_enabled"`
	NotificationDays []int                  `json:"notification_days"`
	PushTokens       []string               `json:"push_tokens"`
}

// LogEntry is one append-only audit record of a notification decision.
// Entries are created by the dispatch pass and never mutated.
type LogEntry struct {
	ID           int64                 `json:"id" db:"id"`
	ObligationID int64                 `json:"obligation_id" db:"vigencia_id"`
	RunID        string                `json:"run_id" db:"run_id"`
	Channel      internaltypes.Channel `json:"channel" db:"channel"`
	Status       internaltypes.Status  `json:"status" db:"status"`
	Message      string                `json:"message" db:"message"` // free text, max 255 chars
	CreatedAt    time.Time             `json:"created_at" db:"created_at"`
}

// Summary accumulates the outcome counters of one run.
type Summary struct {
	Sent     int `json:"sent"`
	WhatsApp int `json:"whatsapp"`
	Push     int `json:"push"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// DaysLeft returns the whole calendar days between asOf and due, ignoring any
// time-of-day component. Negative for overdue obligations.
func DaysLeft(due, asOf time.Time) int {
	d := truncateToDay(due)
	a := truncateToDay(asOf)
	return int(d.Sub(a).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
