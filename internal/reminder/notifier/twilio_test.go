package notifier

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MockMessages satisfies the MessageCreator interface
type MockMessages struct {
	CreateMessageFunc func(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)

	Calls []*twilioapi.CreateMessageParams
}

func (m *MockMessages) CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	m.Calls = append(m.Calls, params)
	return m.CreateMessageFunc(params)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTwilio_SendSMS(t *testing.T) {
	from := "+15005550006"

	t.Run("returns true and passes sender, recipient and body", func(t *testing.T) {
		sid := "SM123"
		mock := &MockMessages{
			CreateMessageFunc: func(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
				return &twilioapi.ApiV2010Message{Sid: &sid}, nil
			},
		}

		sender := &Twilio{Messages: mock, From: from, Logger: discardLogger()}
		ok := sender.SendSMS("+254797971425", "hello")

		assert.True(t, ok)
		require.Len(t, mock.Calls, 1)
		assert.Equal(t, from, *mock.Calls[0].From)
		assert.Equal(t, "+254797971425", *mock.Calls[0].To)
		assert.Equal(t, "hello", *mock.Calls[0].Body)
	})

	t.Run("returns true when no sid is returned", func(t *testing.T) {
		mock := &MockMessages{
			CreateMessageFunc: func(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
				return &twilioapi.ApiV2010Message{}, nil
			},
		}

		sender := &Twilio{Messages: mock, From: from, Logger: discardLogger()}
		assert.True(t, sender.SendSMS("+254797971425", "hello"))
	})

	t.Run("returns false on a provider rejection", func(t *testing.T) {
		mock := &MockMessages{
			CreateMessageFunc: func(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
				return nil, &twilioclient.TwilioRestError{
					Code:    21211,
					Message: "The 'To' number is not a valid phone number.",
					Status:  400,
				}
			},
		}

		sender := &Twilio{Messages: mock, From: from, Logger: discardLogger()}
		assert.False(t, sender.SendSMS("not-a-number", "hello"))
		assert.Len(t, mock.Calls, 1, "no retry on failure")
	})

	t.Run("returns false on a transport error", func(t *testing.T) {
		mock := &MockMessages{
			CreateMessageFunc: func(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
				return nil, errors.New("connection refused")
			},
		}

		sender := &Twilio{Messages: mock, From: from, Logger: discardLogger()}
		assert.False(t, sender.SendSMS("+254797971425", "hello"))
		assert.Len(t, mock.Calls, 1, "no retry on failure")
	})
}
