package notifier

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/nicholas-fedor/shoutrrr"
)

// DefaultShoutrrrURL logs messages instead of delivering them.
const DefaultShoutrrrURL = "logger://"

// recipientPlaceholder in a shoutrrr URL is replaced by the query-escaped recipient.
const recipientPlaceholder = "{to}"

// Shoutrrr delivers messages through a shoutrrr service URL.
type Shoutrrr struct {
	URL    string
	Logger *slog.Logger
}

// NewShoutrrr validates rawURL and returns a sender for it.
func NewShoutrrr(rawURL string, logger *slog.Logger) (*Shoutrrr, error) {
	if rawURL == "" {
		rawURL = DefaultShoutrrrURL
	}

	_, err := shoutrrr.CreateSender(strings.ReplaceAll(rawURL, recipientPlaceholder, "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid notifier url: %w", err)
	}

	return &Shoutrrr{URL: rawURL, Logger: logger}, nil
}

// SendSMS delivers body for the given recipient. When the URL carries no {to}
// placeholder the recipient is prefixed to the body instead.
func (s *Shoutrrr) SendSMS(to, body string) bool {
	target := s.URL
	message := body

	if strings.Contains(target, recipientPlaceholder) {
		target = strings.ReplaceAll(target, recipientPlaceholder, url.QueryEscape(to))
	} else {
		message = fmt.Sprintf("[%s] %s", to, body)
	}

	sender, err := shoutrrr.CreateSender(target)
	if err != nil {
		s.Logger.Error("Error creating notifier", "to", to, "error", err)
		return false
	}

	errs := sender.Send(message, nil)
	if err := errors.Join(errs...); err != nil {
		s.Logger.Error("Error sending SMS", "to", to, "error", err)
		return false
	}

	s.Logger.Info("SMS sent", "to", to)

	return true
}
