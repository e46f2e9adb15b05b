package reminder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/circa10a/appointment-reminder/internal/reminder/database"
	"github.com/circa10a/appointment-reminder/internal/reminder/notifier"
	"github.com/google/uuid"
	"github.com/jmhodges/clock"
)

// ReminderLead is how far ahead of an appointment the reminder goes out.
const ReminderLead = 24 * time.Hour

// DateLayout is the ISO-8601 date format appointments are stored in.
const DateLayout = "2006-01-02"

// Summary describes the outcome of one sweep.
type Summary struct {
	RunID      string
	TargetDate string
	// Due is the number of appointments selected.
	Due int
	// Handled is the number of appointments marked as sent.
	Handled int
	// Deferred is the number of appointments left pending because a send failed
	// and RequireDelivery is set.
	Deferred int
	Sent     int
	Failed   int
}

// Sweeper finds appointments due tomorrow and notifies both parties.
type Sweeper struct {
	Store    database.Store
	Sender   notifier.Sender
	Clock    clock.Clock
	Location *time.Location
	// RequireDelivery leaves an appointment pending unless both messages were accepted.
	// When false the appointment is marked sent regardless of the outcome.
	RequireDelivery bool
	// Metrics is optional.
	Metrics *Metrics
	Logger  *slog.Logger
}

// TargetDate returns the date, 24 hours from now, that appointments must match to be due.
func (s *Sweeper) TargetDate() string {
	now := s.now()
	if s.Location != nil {
		now = now.In(s.Location)
	}

	return now.Add(ReminderLead).Format(DateLayout)
}

// Sweep runs one pass. Every due appointment gets two independent sends, one to the
// patient and one to the doctor. Store errors abort the pass and are returned.
func (s *Sweeper) Sweep() (Summary, error) {
	summary, err := s.sweep()
	s.Metrics.sweep(err)

	return summary, err
}

func (s *Sweeper) sweep() (Summary, error) {
	summary := Summary{
		RunID:      uuid.NewString(),
		TargetDate: s.TargetDate(),
	}
	log := s.Logger.With("component", "sweep", "run", summary.RunID)

	due, err := s.Store.FindDueReminders(summary.TargetDate)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch due reminders for %s: %w", summary.TargetDate, err)
	}

	summary.Due = len(due)
	log.Debug("Fetched due reminders", "date", summary.TargetDate, "count", summary.Due)

	for _, a := range due {
		log.Info("Processing appointment", "id", a.ID, "date", a.Date, "time", a.Time)

		patientOK := s.Sender.SendSMS(a.PatientPhone, PatientMessage(a))
		doctorOK := s.Sender.SendSMS(a.DoctorPhone, DoctorMessage(a))
		summary.count(patientOK)
		summary.count(doctorOK)
		s.Metrics.message(patientOK)
		s.Metrics.message(doctorOK)

		if s.RequireDelivery && !(patientOK && doctorOK) {
			log.Warn("Leaving reminder pending after failed delivery", "id", a.ID, "patient", patientOK, "doctor", doctorOK)
			summary.Deferred++
			s.Metrics.appointment("deferred")
			continue
		}

		err := s.Store.MarkReminderSent(a.ID)
		if err != nil {
			return summary, fmt.Errorf("failed to mark appointment %d: %w", a.ID, err)
		}

		summary.Handled++
		s.Metrics.appointment("handled")
	}

	log.Info("Completed reminder sweep", "date", summary.TargetDate, "due", summary.Due, "handled", summary.Handled, "deferred", summary.Deferred, "failed", summary.Failed)

	return summary, nil
}

func (s *Sweeper) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}

	return s.Clock.Now()
}

func (sum *Summary) count(ok bool) {
	if ok {
		sum.Sent++
		return
	}

	sum.Failed++
}
