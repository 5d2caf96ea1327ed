package service

import (
	"fmt"
	"time"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
	"github.com/CortinezO98/MisVigencias/internal/model"
)

// Decision is one planned notification for a single obligation: either a
// firing (channel, reason, daysLeft) or a skip that must be logged.
type Decision struct {
	Channel  internaltypes.Channel
	Skip     bool
	Reason   string
	DaysLeft int
}

// Evaluator computes which channels should fire for an obligation on a given
// as-of date. It is pure: no clock, no I/O.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate applies the offset-flag logic per channel.
//
// Email fires on 30/15/7/1 when the matching flag is set, and always on the
// due date itself. An owner without an email gets a single SKIPPED decision
// instead of any offset evaluation. WhatsApp is gated on PRO plan + opt-in +
// phone, and only knows the 7/1/0 offsets; a closed gate produces nothing.
// Push mirrors the WhatsApp offsets and is gated on having at least one
// active device token.
func (e *Evaluator) Evaluate(asOf time.Time, ob *model.Obligation) []Decision {
	daysLeft := model.DaysLeft(ob.DueDate, asOf)
	decisions := []Decision{}

	if ob.Owner.Email == "" {
		decisions = append(decisions, Decision{
			Channel:  internaltypes.ChannelEmail,
			Skip:     true,
			Reason:   "Usuario sin email",
			DaysLeft: daysLeft,
		})
	} else if shouldFireEmail(daysLeft, ob) {
		decisions = append(decisions, Decision{
			Channel:  internaltypes.ChannelEmail,
			Reason:   fireReason(ob, daysLeft),
			DaysLeft: daysLeft,
		})
	}

	whatsappOpen := ob.Owner.Plan == internaltypes.PlanPro &&
		ob.Owner.WhatsAppEnabled &&
		ob.Owner.Phone != ""
	if whatsappOpen && shouldFireShortOffset(daysLeft, ob) {
		decisions = append(decisions, Decision{
			Channel:  internaltypes.ChannelWhatsApp,
			Reason:   fireReason(ob, daysLeft),
			DaysLeft: daysLeft,
		})
	}

	if len(ob.Owner.PushTokens) > 0 && shouldFireShortOffset(daysLeft, ob) {
		decisions = append(decisions, Decision{
			Channel:  internaltypes.ChannelPush,
			Reason:   fireReason(ob, daysLeft),
			DaysLeft: daysLeft,
		})
	}

	return decisions
}

func shouldFireEmail(daysLeft int, ob *model.Obligation) bool {
	return (daysLeft == 30 && ob.R30) ||
		(daysLeft == 15 && ob.R15) ||
		(daysLeft == 7 && ob.R7) ||
		(daysLeft == 1 && ob.R1) ||
		daysLeft == 0 // due today always notifies, flags or not
}

func shouldFireShortOffset(daysLeft int, ob *model.Obligation) bool {
	return (daysLeft == 7 && ob.R7) ||
		(daysLeft == 1 && ob.R1) ||
		daysLeft == 0
}

func fireReason(ob *model.Obligation, daysLeft int) string {
	return fmt.Sprintf("%s del vehículo '%s' vence en %d día(s)", ob.Kind.Display(), ob.Vehicle.Alias, daysLeft)
}
