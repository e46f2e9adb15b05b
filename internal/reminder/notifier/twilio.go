package notifier

import (
	"errors"
	"log/slog"

	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageCreator is the part of the Twilio REST API used to send messages.
// *twilioapi.ApiService satisfies it.
type MessageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// Twilio sends SMS from a fixed sender number.
type Twilio struct {
	Messages MessageCreator
	From     string
	Logger   *slog.Logger
}

// SendSMS sends body to the given number. Every provider error, transient or not,
// is logged and reported as false. There is no retry.
func (t *Twilio) SendSMS(to, body string) bool {
	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(t.From)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := t.Messages.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			t.Logger.Error("Error sending SMS", "to", to, "code", restErr.Code, "status", restErr.Status, "error", restErr.Message)
			return false
		}

		t.Logger.Error("Error sending SMS", "to", to, "error", err)
		return false
	}

	if resp != nil && resp.Sid != nil {
		t.Logger.Info("SMS sent", "to", to, "sid", *resp.Sid)
	} else {
		t.Logger.Info("SMS sent", "to", to)
	}

	return true
}
