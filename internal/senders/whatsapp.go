package senders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/CortinezO98/MisVigencias/internal/ports"
)

// WhatsAppSender delivers reminders through the Twilio WhatsApp API. In
// simulate mode nothing leaves the process and the send is only logged; both
// modes sit behind the same interface so the dispatch service cannot tell
// them apart.
type WhatsAppSender struct {
	client   *twilio.RestClient
	from     string
	simulate bool
}

func NewWhatsAppSender(accountSID, authToken, fromNumber string, simulate bool) *WhatsAppSender {
	s := &WhatsAppSender{
		from:     "whatsapp:" + fromNumber,
		simulate: simulate,
	}
	if !simulate {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
	}
	return s
}

func (s *WhatsAppSender) Send(ctx context.Context, recipient, _ string, body string) (ports.Result, error) {
	if !strings.HasPrefix(recipient, "+") {
		return ports.Result{}, fmt.Errorf("%w: %s", ErrInvalidRecipient, recipient)
	}

	if s.simulate {
		zlog.Logger.Info().
			Str("to", recipient).
			Msg("[WHATSAPP SIMULADO]")
		return ports.Result{
			ProviderID: "simulated",
			Detail:     fmt.Sprintf("WhatsApp simulado a %s", recipient),
		}, nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo("whatsapp:" + recipient)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		if ctx.Err() != nil {
			return ports.Result{}, fmt.Errorf("%w: %s", ErrTimeout, recipient)
		}
		return ports.Result{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	return ports.Result{
		ProviderID: sid,
		Detail:     fmt.Sprintf("WhatsApp enviado a %s (%s)", recipient, sid),
	}, nil
}

// WhatsAppMessage renders the approved reminder template. The urgency wording
// changes at due-today and inside the final week.
func WhatsAppMessage(kind, vehicleAlias string, dueDate time.Time, daysLeft int) string {
	due := dueDate.Format("2006-01-02")
	switch {
	case daysLeft == 0:
		return fmt.Sprintf(
			"*URGENTE: %s VENCE HOY*\n"+
				"Documento: %s\n"+
				"Vehículo: %s\n"+
				"Fecha vencimiento: HOY\n\n"+
				"_Mis Vigencias - Recordatorios automáticos_",
			kind, kind, vehicleAlias)
	case daysLeft <= 7:
		return fmt.Sprintf(
			"*Recordatorio: %s por vencer*\n"+
				"Documento: %s\n"+
				"Vehículo: %s\n"+
				"Vence en: %d días\n"+
				"Fecha: %s\n\n"+
				"_Mis Vigencias - Recordatorios automáticos_",
			kind, kind, vehicleAlias, daysLeft, due)
	default:
		return fmt.Sprintf(
			"*Recordatorio: %s*\n"+
				"Documento: %s\n"+
				"Vehículo: %s\n"+
				"Vence en: %d días\n"+
				"Fecha: %s\n\n"+
				"_Mis Vigencias - Recordatorios automáticos_",
			kind, kind, vehicleAlias, daysLeft, due)
	}
}
