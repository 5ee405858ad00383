package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNotConfigured is returned when a sender or recipient number is missing
var ErrNotConfigured = errors.New("whatsapp notifier not configured")

const whatsAppPrefix = "whatsapp:"

// messageCreator is the slice of the Twilio REST API the notifier needs
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsApp sends alert bodies through Twilio's WhatsApp channel
type WhatsApp struct {
	api  messageCreator
	from string
	to   string
}

// NewWhatsApp creates a notifier authenticated with the Twilio account SID and auth token
func NewWhatsApp(accountSID, authToken, fromNumber, toNumber string) *WhatsApp {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newWhatsApp(client.Api, fromNumber, toNumber)
}

func newWhatsApp(api messageCreator, fromNumber, toNumber string) *WhatsApp {
	return &WhatsApp{
		api:  api,
		from: WhatsAppAddress(fromNumber),
		to:   WhatsAppAddress(toNumber),
	}
}

// WhatsAppAddress tags a phone number for the WhatsApp transport.
// Already tagged addresses are returned unchanged.
func WhatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, whatsAppPrefix) {
		return number
	}
	return whatsAppPrefix + number
}

// Send delivers body as one WhatsApp message. The Twilio SDK call is
// synchronous and not cancellable; ctx is only checked before dispatch.
func (w *WhatsApp) Send(ctx context.Context, body string) error {
	if w.from == "" || w.to == "" {
		return ErrNotConfigured
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send cancelled: %w", err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(w.from)
	params.SetTo(w.to)
	params.SetBody(body)

	if _, err := w.api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}

	return nil
}
