package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
	"github.com/CortinezO98/MisVigencias/internal/model"
	"github.com/CortinezO98/MisVigencias/internal/ports"
	"github.com/CortinezO98/MisVigencias/internal/senders"
)

const maxLogMessageLen = 255

// DispatchDeps wires the collaborators of one dispatch pass. Guard may be
// nil: the run then has no once-per-day protection and re-running the same
// date double-sends, like the source system. Out defaults to stdout and only
// receives the test-mode intent lines. SendTimeout bounds every channel send;
// a provider that goes silent becomes a FAILED entry instead of stalling the
// run. Defaults to 30s.
type DispatchDeps struct {
	Source      ports.ObligationSource
	Logs        ports.LogRecorder
	Tokens      ports.TokenRegistry
	Guard       ports.RunGuard
	Email       ports.Sender
	WhatsApp    ports.Sender
	Push        ports.PushSender
	Workers     int
	SendTimeout time.Duration
	Out         io.Writer
}

// DispatchService executes one reminder pass: fetch the active obligations,
// evaluate each, send over the open channels and append one log entry per
// evaluated (obligation, channel). A failure on one obligation never stops
// the others.
type DispatchService struct {
	deps      DispatchDeps
	evaluator *Evaluator
}

func NewDispatchService(deps DispatchDeps) *DispatchService {
	if deps.Workers <= 0 {
		deps.Workers = 1
	}
	if deps.SendTimeout <= 0 {
		deps.SendTimeout = 30 * time.Second
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	return &DispatchService{
		deps:      deps,
		evaluator: NewEvaluator(),
	}
}

// Run executes the pass for asOf. Only a failure to enumerate obligations is
// fatal; every per-obligation error becomes a FAILED or SKIPPED log entry.
func (s *DispatchService) Run(ctx context.Context, asOf time.Time, testMode bool) (model.Summary, error) {
	start := time.Now()
	runID := uuid.New().String()

	obligations, err := s.deps.Source.FetchActive(ctx)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to fetch obligations: %w", err)
	}

	zlog.Logger.Info().
		Str("run_id", runID).
		Str("as_of", asOf.Format("2006-01-02")).
		Bool("test_mode", testMode).
		Int("obligations", len(obligations)).
		Msg("starting reminder pass")

	var (
		mu      sync.Mutex
		summary model.Summary
	)

	group := &errgroup.Group{}
	group.SetLimit(s.deps.Workers)

	for _, ob := range obligations {
		ob := ob
		group.Go(func() error {
			local := s.processObligation(ctx, runID, asOf, testMode, ob)
			mu.Lock()
			summary.Sent += local.Sent
			summary.WhatsApp += local.WhatsApp
			summary.Push += local.Push
			summary.Skipped += local.Skipped
			summary.Failed += local.Failed
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	observeRun(summary, time.Since(start))

	zlog.Logger.Info().
		Str("run_id", runID).
		Int("sent", summary.Sent).
		Int("whatsapp", summary.WhatsApp).
		Int("push", summary.Push).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("reminder pass finished")

	return summary, nil
}

func (s *DispatchService) processObligation(ctx context.Context, runID string, asOf time.Time, testMode bool, ob *model.Obligation) model.Summary {
	var local model.Summary

	for _, decision := range s.evaluator.Evaluate(asOf, ob) {
		switch decision.Channel {
		case internaltypes.ChannelEmail:
			s.handleEmail(ctx, runID, asOf, testMode, ob, decision, &local)
		case internaltypes.ChannelWhatsApp:
			s.handleWhatsApp(ctx, runID, asOf, testMode, ob, decision, &local)
		case internaltypes.ChannelPush:
			s.handlePush(ctx, runID, asOf, testMode, ob, decision, &local)
		}
	}

	return local
}

func (s *DispatchService) handleEmail(ctx context.Context, runID string, asOf time.Time, testMode bool, ob *model.Obligation, decision Decision, local *model.Summary) {
	// The no-email skip is logged even in test mode.
	if decision.Skip {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelEmail, internaltypes.StatusSkipped, decision.Reason)
		local.Skipped++
		return
	}

	if testMode {
		fmt.Fprintf(s.deps.Out, "[TEST] Email para %s: %s vence en %d días\n",
			ob.Owner.Email, ob.Kind.Display(), decision.DaysLeft)
		local.Sent++
		return
	}

	if !s.firstToday(ctx, ob.ID, internaltypes.ChannelEmail, asOf) {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelEmail, internaltypes.StatusSkipped,
			fmt.Sprintf("Ya notificado hoy (run previo), days_left=%d", decision.DaysLeft))
		local.Skipped++
		return
	}

	subject := fmt.Sprintf("[Mis Vigencias] %s vence en %d día(s)", ob.Kind.Display(), decision.DaysLeft)
	body := emailBody(ob, decision.DaysLeft)

	sendCtx, cancel := context.WithTimeout(ctx, s.deps.SendTimeout)
	defer cancel()

	result, err := s.deps.Email.Send(sendCtx, ob.Owner.Email, subject, body)
	if err != nil {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelEmail, internaltypes.StatusFailed, err.Error())
		local.Failed++
		return
	}

	s.record(ctx, runID, ob.ID, internaltypes.ChannelEmail, internaltypes.StatusSent,
		fmt.Sprintf("%s (days_left=%d)", result.Detail, decision.DaysLeft))
	local.Sent++
}

func (s *DispatchService) handleWhatsApp(ctx context.Context, runID string, asOf time.Time, testMode bool, ob *model.Obligation, decision Decision, local *model.Summary) {
	if testMode {
		local.WhatsApp++
		return
	}

	if !s.firstToday(ctx, ob.ID, internaltypes.ChannelWhatsApp, asOf) {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelWhatsApp, internaltypes.StatusSkipped,
			fmt.Sprintf("Ya notificado hoy (run previo), days_left=%d", decision.DaysLeft))
		local.Skipped++
		return
	}

	body := senders.WhatsAppMessage(ob.Kind.Display(), ob.Vehicle.Alias, ob.DueDate, decision.DaysLeft)

	sendCtx, cancel := context.WithTimeout(ctx, s.deps.SendTimeout)
	defer cancel()

	result, err := s.deps.WhatsApp.Send(sendCtx, ob.Owner.Phone, "", body)
	if err != nil {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelWhatsApp, internaltypes.StatusFailed, err.Error())
		local.Failed++
		return
	}

	s.record(ctx, runID, ob.ID, internaltypes.ChannelWhatsApp, internaltypes.StatusSent, result.Detail)
	local.WhatsApp++
}

func (s *DispatchService) handlePush(ctx context.Context, runID string, asOf time.Time, testMode bool, ob *model.Obligation, decision Decision, local *model.Summary) {
	if s.deps.Push == nil {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelPush, internaltypes.StatusSkipped,
			"Canal push no configurado")
		local.Skipped++
		return
	}

	if testMode {
		local.Push++
		return
	}

	if !s.firstToday(ctx, ob.ID, internaltypes.ChannelPush, asOf) {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelPush, internaltypes.StatusSkipped,
			fmt.Sprintf("Ya notificado hoy (run previo), days_left=%d", decision.DaysLeft))
		local.Skipped++
		return
	}

	title := fmt.Sprintf("%s vence en %d día(s)", ob.Kind.Display(), decision.DaysLeft)
	data := map[string]string{"vigencia_id": fmt.Sprintf("%d", ob.ID)}

	sendCtx, cancel := context.WithTimeout(ctx, s.deps.SendTimeout)
	defer cancel()

	result, badTokens, err := s.deps.Push.SendToTokens(sendCtx, ob.Owner.PushTokens, title, decision.Reason, data)

	for _, token := range badTokens {
		if deactivateErr := s.deps.Tokens.DeactivateToken(ctx, token); deactivateErr != nil {
			zlog.Logger.Warn().Err(deactivateErr).Str("token", token).Msg("failed to deactivate push token")
		}
	}

	if err != nil {
		s.record(ctx, runID, ob.ID, internaltypes.ChannelPush, internaltypes.StatusFailed, err.Error())
		local.Failed++
		return
	}

	s.record(ctx, runID, ob.ID, internaltypes.ChannelPush, internaltypes.StatusSent, result.Detail)
	local.Push++
}

// firstToday consults the optional run guard. Guard errors fail open: a
// broken Redis must not silence the day's reminders.
func (s *DispatchService) firstToday(ctx context.Context, obligationID int64, channel internaltypes.Channel, asOf time.Time) bool {
	if s.deps.Guard == nil {
		return true
	}
	first, err := s.deps.Guard.FirstToday(ctx, obligationID, channel, asOf)
	if err != nil {
		zlog.Logger.Warn().Err(err).Int64("vigencia_id", obligationID).Msg("run guard unavailable, proceeding")
		return true
	}
	return first
}

func (s *DispatchService) record(ctx context.Context, runID string, obligationID int64, channel internaltypes.Channel, status internaltypes.Status, message string) {
	entry := model.LogEntry{
		ObligationID: obligationID,
		RunID:        runID,
		Channel:      channel,
		Status:       status,
		Message:      truncate(message, maxLogMessageLen),
	}
	if err := s.deps.Logs.Record(ctx, entry); err != nil {
		zlog.Logger.Error().Err(err).
			Int64("vigencia_id", obligationID).
			Str("channel", channel.String()).
			Str("status", status.String()).
			Msg("failed to write notification log entry")
	}
	countReminder(channel, status)
}

func emailBody(ob *model.Obligation, daysLeft int) string {
	return fmt.Sprintf(
		"Hola %s,\n\n"+
			"Te recordamos que tu %s del vehículo '%s' vence el %s.\n"+
			"Días restantes: %d\n\n"+
			"Si ya renovaste, entra al dashboard y márcalo como 'Renové'.\n\n"+
			"— Mis Vigencias",
		ob.Owner.Username,
		ob.Kind.Display(),
		ob.Vehicle.Alias,
		ob.DueDate.Format("2006-01-02"),
		daysLeft,
	)
}

// truncate cuts on runes, not bytes: the VARCHAR(255) column counts
// characters and a byte cut could split a multibyte rune in Spanish
// provider-error text, making the insert itself fail.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
