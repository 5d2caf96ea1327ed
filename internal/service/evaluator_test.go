package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
	"github.com/CortinezO98/MisVigencias/internal/model"
)

func mustKind(t *testing.T, v string) internaltypes.DocumentKind {
	t.Helper()
	k, err := internaltypes.DocumentKindFromString(v)
	assert.NoError(t, err)
	return k
}

func baseObligation(t *testing.T, dueIn int, asOf time.Time) *model.Obligation {
	t.Helper()
	return &model.Obligation{
		ID:      1,
		Kind:    mustKind(t, internaltypes.SOAT),
		DueDate: asOf.AddDate(0, 0, dueIn),
		Active:  true,
		R30:     true,
		R15:     true,
		R7:      true,
		R1:      true,
		Vehicle: model.Vehicle{Alias: "moto roja"},
		Owner: model.Owner{
			ID:       10,
			Username: "carlos",
			Email:    "carlos@example.com",
			Plan:     internaltypes.PlanFree,
		},
	}
}

func channelsOf(decisions []Decision) []string {
	out := make([]string, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, d.Channel.String())
	}
	return out
}

func TestEvaluateEmailOffsets(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ev := NewEvaluator()

	tests := []struct {
		name       string
		dueIn      int
		mutate     func(*model.Obligation)
		wantEmail  bool
		wantReason string
	}{
		{name: "30 days with r30", dueIn: 30, wantEmail: true},
		{name: "30 days without r30", dueIn: 30, mutate: func(o *model.Obligation) { o.R30 = false }, wantEmail: false},
		{name: "15 days with r15", dueIn: 15, wantEmail: true},
		{name: "15 days without r15", dueIn: 15, mutate: func(o *model.Obligation) { o.R15 = false }, wantEmail: false},
		{name: "7 days with r7", dueIn: 7, wantEmail: true, wantReason: "vence en 7 día(s)"},
		{name: "7 days without r7", dueIn: 7, mutate: func(o *model.Obligation) { o.R7 = false }, wantEmail: false},
		{name: "1 day with r1", dueIn: 1, wantEmail: true},
		{name: "due today fires with all flags off", dueIn: 0, mutate: func(o *model.Obligation) {
			o.R30, o.R15, o.R7, o.R1 = false, false, false, false
		}, wantEmail: true},
		{name: "no offset matches", dueIn: 12, wantEmail: false},
		{name: "overdue never fires", dueIn: -1, wantEmail: false},
		{name: "far overdue never fires", dueIn: -30, wantEmail: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ob := baseObligation(t, tc.dueIn, asOf)
			if tc.mutate != nil {
				tc.mutate(ob)
			}

			decisions := ev.Evaluate(asOf, ob)

			if !tc.wantEmail {
				assert.NotContains(t, channelsOf(decisions), internaltypes.EMAIL)
				return
			}
			assert.Len(t, decisions, 1)
			assert.Equal(t, internaltypes.ChannelEmail, decisions[0].Channel)
			assert.False(t, decisions[0].Skip)
			assert.Equal(t, tc.dueIn, decisions[0].DaysLeft)
			if tc.wantReason != "" {
				assert.Contains(t, decisions[0].Reason, tc.wantReason)
			}
		})
	}
}

func TestEvaluateNoEmailProducesSingleSkip(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ev := NewEvaluator()

	ob := baseObligation(t, 0, asOf)
	ob.Owner.Email = ""

	decisions := ev.Evaluate(asOf, ob)

	assert.Len(t, decisions, 1)
	assert.Equal(t, internaltypes.ChannelEmail, decisions[0].Channel)
	assert.True(t, decisions[0].Skip)
	assert.Contains(t, decisions[0].Reason, "sin email")
}

func TestEvaluateWhatsAppGate(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ev := NewEvaluator()

	tests := []struct {
		name   string
		dueIn  int
		mutate func(*model.Obligation)
		want   bool
	}{
		{name: "pro with phone and opt-in at 7", dueIn: 7, want: true},
		{name: "pro at 1 day", dueIn: 1, want: true},
		{name: "pro due today", dueIn: 0, want: true},
		{name: "pro at 30 days never", dueIn: 30, want: false},
		{name: "pro at 15 days never", dueIn: 15, want: false},
		{name: "free plan never fires even fully configured", dueIn: 7, mutate: func(o *model.Obligation) {
			o.Owner.Plan = internaltypes.PlanFree
		}, want: false},
		{name: "opt-out closes the gate", dueIn: 7, mutate: func(o *model.Obligation) {
			o.Owner.WhatsAppEnabled = false
		}, want: false},
		{name: "missing phone closes the gate", dueIn: 7, mutate: func(o *model.Obligation) {
			o.Owner.Phone = ""
		}, want: false},
		{name: "r7 off suppresses 7-day whatsapp", dueIn: 7, mutate: func(o *model.Obligation) {
			o.R7 = false
		}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ob := baseObligation(t, tc.dueIn, asOf)
			ob.Owner.Plan = internaltypes.PlanPro
			ob.Owner.WhatsAppEnabled = true
			ob.Owner.Phone = "+573001112233"
			if tc.mutate != nil {
				tc.mutate(ob)
			}

			got := channelsOf(ev.Evaluate(asOf, ob))

			if tc.want {
				assert.Contains(t, got, internaltypes.WHATSAPP)
			} else {
				assert.NotContains(t, got, internaltypes.WHATSAPP)
			}
		})
	}
}

func TestEvaluateWhatsAppClosedGateProducesNoSkipEntry(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ev := NewEvaluator()

	ob := baseObligation(t, 7, asOf)
	ob.Owner.WhatsAppEnabled = true
	ob.Owner.Phone = "+573001112233"
	// FREE plan: gate closed, silently excluded

	decisions := ev.Evaluate(asOf, ob)

	assert.Len(t, decisions, 1)
	assert.Equal(t, internaltypes.ChannelEmail, decisions[0].Channel)
}

func TestEvaluatePushRequiresToken(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ev := NewEvaluator()

	ob := baseObligation(t, 1, asOf)
	assert.NotContains(t, channelsOf(ev.Evaluate(asOf, ob)), internaltypes.PUSH)

	ob.Owner.PushTokens = []string{"fcm-token-0123456789abcdef"}
	assert.Contains(t, channelsOf(ev.Evaluate(asOf, ob)), internaltypes.PUSH)

	// push mirrors the short offsets only
	ob30 := baseObligation(t, 30, asOf)
	ob30.Owner.PushTokens = []string{"fcm-token-0123456789abcdef"}
	assert.NotContains(t, channelsOf(ev.Evaluate(asOf, ob30)), internaltypes.PUSH)
}

func TestEvaluateBothChannelsAtOneDay(t *testing.T) {
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	ev := NewEvaluator()

	ob := baseObligation(t, 1, asOf)
	ob.Owner.Plan = internaltypes.PlanPro
	ob.Owner.WhatsAppEnabled = true
	ob.Owner.Phone = "+573001112233"

	got := channelsOf(ev.Evaluate(asOf, ob))

	assert.Equal(t, []string{internaltypes.EMAIL, internaltypes.WHATSAPP}, got)
}

func TestEvaluateIgnoresTimeOfDay(t *testing.T) {
	// asOf late in the evening must still count whole calendar days
	asOf := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)
	ev := NewEvaluator()

	ob := baseObligation(t, 0, asOf)
	ob.DueDate = time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)

	decisions := ev.Evaluate(asOf, ob)

	assert.Len(t, decisions, 1)
	assert.Equal(t, 7, decisions[0].DaysLeft)
}
