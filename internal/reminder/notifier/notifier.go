package notifier

import (
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
)

const (
	// ProviderTwilio delivers SMS through the Twilio Messages API.
	ProviderTwilio = "twilio"
	// ProviderShoutrrr delivers through a shoutrrr service URL, e.g. logger:// for dry runs.
	ProviderShoutrrr = "shoutrrr"
)

// Providers lists the supported provider names.
var Providers = []string{ProviderTwilio, ProviderShoutrrr}

// Sender delivers a single text message. It reports whether the provider accepted the
// message; failure details are logged rather than returned.
type Sender interface {
	SendSMS(to, body string) bool
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(to, body string) bool

// SendSMS calls f(to, body).
func (f SenderFunc) SendSMS(to, body string) bool {
	return f(to, body)
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	AccountSID string
	AuthToken  string
	From       string
	URL        string
}

// New returns the Sender for cfg.Provider.
func New(cfg Config, logger *slog.Logger) (Sender, error) {
	log := logger.With("component", "notifier", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderTwilio, "":
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})

		return &Twilio{
			Messages: client.Api,
			From:     cfg.From,
			Logger:   log,
		}, nil
	case ProviderShoutrrr:
		return NewShoutrrr(cfg.URL, log)
	}

	return nil, fmt.Errorf("unsupported provider %q. Supported providers are: %v", cfg.Provider, Providers)
}
