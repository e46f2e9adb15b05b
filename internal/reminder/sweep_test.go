package reminder

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/circa10a/appointment-reminder/internal/reminder/database"
	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentMessage is a single call captured by RecordingSender.
type sentMessage struct {
	To   string
	Body string
}

// RecordingSender satisfies notifier.Sender and records every call.
type RecordingSender struct {
	Accept func(to string) bool
	Calls  []sentMessage
}

func (r *RecordingSender) SendSMS(to, body string) bool {
	r.Calls = append(r.Calls, sentMessage{To: to, Body: body})
	if r.Accept == nil {
		return true
	}
	return r.Accept(to)
}

// MockStore satisfies the database.Store interface
type MockStore struct {
	FindDueRemindersFunc func(targetDate string) ([]database.Appointment, error)
	MarkReminderSentFunc func(id int64) error
	PingFunc             func() error

	Marked []int64
}

func (m *MockStore) Init() error {
	return nil
}
func (m *MockStore) Create(a database.Appointment) (int64, error) {
	return 1, nil
}
func (m *MockStore) GetByID(id int64) (database.Appointment, error) {
	return database.Appointment{}, nil
}
func (m *MockStore) GetAll(limit int) ([]database.Appointment, error) {
	return nil, nil
}
func (m *MockStore) FindDueReminders(targetDate string) ([]database.Appointment, error) {
	return m.FindDueRemindersFunc(targetDate)
}
func (m *MockStore) MarkReminderSent(id int64) error {
	m.Marked = append(m.Marked, id)
	if m.MarkReminderSentFunc != nil {
		return m.MarkReminderSentFunc(id)
	}
	return nil
}
func (m *MockStore) Ping() error {
	if m.PingFunc != nil {
		return m.PingFunc()
	}
	return nil
}

var testNow = time.Date(2026, time.October, 19, 10, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeClock(t time.Time) clock.FakeClock {
	c := clock.NewFake()
	c.Set(t)
	return c
}

func setupTestSweeper(t *testing.T, sender *RecordingSender) (*Sweeper, *database.SQLiteStore) {
	t.Helper()
	store, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "appointments.db"), false)
	require.NoError(t, err)
	require.NoError(t, store.Init())

	return &Sweeper{
		Store:    store,
		Sender:   sender,
		Clock:    fakeClock(testNow),
		Location: time.UTC,
		Logger:   discardLogger(),
	}, store
}

func sample(date string) database.Appointment {
	return database.Appointment{
		PatientName:  "Dan Sande",
		PatientPhone: "+254797971425",
		DoctorName:   "Dr. Son",
		DoctorPhone:  "+254740946260",
		Date:         date,
		Time:         "14:00",
	}
}

func TestSweeper_TargetDate(t *testing.T) {
	t.Run("is 24 hours ahead", func(t *testing.T) {
		s := &Sweeper{Clock: fakeClock(testNow), Location: time.UTC}
		assert.Equal(t, "2026-10-20", s.TargetDate())
	})

	t.Run("rolls over month boundaries", func(t *testing.T) {
		s := &Sweeper{Clock: fakeClock(time.Date(2026, time.October, 31, 23, 59, 0, 0, time.UTC)), Location: time.UTC}
		assert.Equal(t, "2026-11-01", s.TargetDate())
	})

	t.Run("uses the configured location", func(t *testing.T) {
		// 22:00 UTC on the 19th is already the 20th in Nairobi (UTC+3)
		nairobi := time.FixedZone("EAT", 3*60*60)
		s := &Sweeper{Clock: fakeClock(time.Date(2026, time.October, 19, 22, 0, 0, 0, time.UTC)), Location: nairobi}
		assert.Equal(t, "2026-10-21", s.TargetDate())
	})
}

func TestSweeper_Sweep_AllAccepted(t *testing.T) {
	sender := &RecordingSender{}
	sweeper, store := setupTestSweeper(t, sender)

	id, err := store.Create(sample("2026-10-20"))
	require.NoError(t, err)

	sum, err := sweeper.Sweep()
	require.NoError(t, err)

	require.Len(t, sender.Calls, 2)
	assert.Equal(t, "+254797971425", sender.Calls[0].To)
	assert.Contains(t, sender.Calls[0].Body, "Dr. Son")
	assert.Contains(t, sender.Calls[0].Body, "14:00")
	assert.Equal(t, "+254740946260", sender.Calls[1].To)
	assert.Contains(t, sender.Calls[1].Body, "Dan Sande")
	assert.Contains(t, sender.Calls[1].Body, "14:00")

	got, err := store.GetByID(id)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)

	assert.Equal(t, Summary{RunID: sum.RunID, TargetDate: "2026-10-20", Due: 1, Handled: 1, Sent: 2}, sum)
	assert.NotEmpty(t, sum.RunID)

	t.Run("re-running does not notify again", func(t *testing.T) {
		sum, err := sweeper.Sweep()
		require.NoError(t, err)
		assert.Zero(t, sum.Due)
		assert.Len(t, sender.Calls, 2)
	})
}

func TestSweeper_Sweep_AllRejected(t *testing.T) {
	sender := &RecordingSender{Accept: func(string) bool { return false }}
	sweeper, store := setupTestSweeper(t, sender)

	id, err := store.Create(sample("2026-10-20"))
	require.NoError(t, err)

	sum, err := sweeper.Sweep()
	require.NoError(t, err)

	assert.Len(t, sender.Calls, 2, "both sends are attempted even when the first fails")
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 1, sum.Handled)

	got, err := store.GetByID(id)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent, "reminder is forfeited when delivery fails")
}

func TestSweeper_Sweep_TwoDaysOut(t *testing.T) {
	sender := &RecordingSender{}
	sweeper, store := setupTestSweeper(t, sender)

	id, err := store.Create(sample("2026-10-21"))
	require.NoError(t, err)

	sum, err := sweeper.Sweep()
	require.NoError(t, err)

	assert.Zero(t, sum.Due)
	assert.Empty(t, sender.Calls)

	got, err := store.GetByID(id)
	require.NoError(t, err)
	assert.False(t, got.ReminderSent)
}

func TestSweeper_Sweep_RequireDelivery(t *testing.T) {
	t.Run("partial failure leaves the appointment pending", func(t *testing.T) {
		sender := &RecordingSender{Accept: func(to string) bool { return to != "+254740946260" }}
		sweeper, store := setupTestSweeper(t, sender)
		sweeper.RequireDelivery = true

		id, err := store.Create(sample("2026-10-20"))
		require.NoError(t, err)

		sum, err := sweeper.Sweep()
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Deferred)
		assert.Zero(t, sum.Handled)

		got, err := store.GetByID(id)
		require.NoError(t, err)
		assert.False(t, got.ReminderSent)

		// Next pass retries both parties
		sender.Accept = nil
		sum, err = sweeper.Sweep()
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Handled)
		assert.Len(t, sender.Calls, 4)
	})

	t.Run("full success marks the appointment", func(t *testing.T) {
		sender := &RecordingSender{}
		sweeper, store := setupTestSweeper(t, sender)
		sweeper.RequireDelivery = true

		id, err := store.Create(sample("2026-10-20"))
		require.NoError(t, err)

		_, err = sweeper.Sweep()
		require.NoError(t, err)

		got, err := store.GetByID(id)
		require.NoError(t, err)
		assert.True(t, got.ReminderSent)
	})
}

func TestSweeper_Sweep_MultipleRows(t *testing.T) {
	sender := &RecordingSender{}
	sweeper, store := setupTestSweeper(t, sender)

	for range 3 {
		_, err := store.Create(sample("2026-10-20"))
		require.NoError(t, err)
	}

	sum, err := sweeper.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Due)
	assert.Equal(t, 3, sum.Handled)
	assert.Len(t, sender.Calls, 6)
}

func TestSweeper_Sweep_StoreErrors(t *testing.T) {
	t.Run("fetch failure propagates", func(t *testing.T) {
		sender := &RecordingSender{}
		mock := &MockStore{
			FindDueRemindersFunc: func(string) ([]database.Appointment, error) {
				return nil, errors.New("database is locked")
			},
		}

		s := &Sweeper{Store: mock, Sender: sender, Clock: fakeClock(testNow), Logger: discardLogger()}
		_, err := s.Sweep()

		assert.ErrorContains(t, err, "database is locked")
		assert.Empty(t, sender.Calls)
	})

	t.Run("mark failure stops the pass", func(t *testing.T) {
		sender := &RecordingSender{}
		mock := &MockStore{
			FindDueRemindersFunc: func(string) ([]database.Appointment, error) {
				first, second := sample("2026-10-20"), sample("2026-10-20")
				first.ID, second.ID = 1, 2
				return []database.Appointment{first, second}, nil
			},
			MarkReminderSentFunc: func(int64) error {
				return errors.New("disk I/O error")
			},
		}

		s := &Sweeper{Store: mock, Sender: sender, Clock: fakeClock(testNow), Logger: discardLogger()}
		sum, err := s.Sweep()

		assert.Error(t, err)
		assert.Equal(t, []int64{1}, mock.Marked)
		assert.Len(t, sender.Calls, 2)
		assert.Zero(t, sum.Handled)
	})

	t.Run("queries the computed target date", func(t *testing.T) {
		var queried string
		mock := &MockStore{
			FindDueRemindersFunc: func(date string) ([]database.Appointment, error) {
				queried = date
				return nil, nil
			},
		}

		s := &Sweeper{Store: mock, Sender: &RecordingSender{}, Clock: fakeClock(testNow), Location: time.UTC, Logger: discardLogger()}
		_, err := s.Sweep()

		require.NoError(t, err)
		assert.Equal(t, "2026-10-20", queried)
	})
}

func TestMessages(t *testing.T) {
	a := sample("2026-10-20")

	assert.Equal(t, "Reminder: Your appointment with Dr. Dr. Son is tomorrow at 14:00.", PatientMessage(a))
	assert.Equal(t, "Reminder: You have an appointment with Dan Sande tomorrow at 14:00.", DoctorMessage(a))
}
