package database

// Appointment is a single appointment row and its reminder state.
type Appointment struct {
	ID           int64  `json:"id" yaml:"id"`
	PatientName  string `json:"patientName" yaml:"patientName"`
	PatientPhone string `json:"patientPhone" yaml:"patientPhone"`
	DoctorName   string `json:"doctorName" yaml:"doctorName"`
	DoctorPhone  string `json:"doctorPhone" yaml:"doctorPhone"`
	// Date is an ISO-8601 calendar date (YYYY-MM-DD).
	Date string `json:"date" yaml:"date"`
	// Time is stored as given, e.g. "14:00".
	Time         string `json:"time" yaml:"time"`
	ReminderSent bool   `json:"reminderSent" yaml:"reminderSent"`
}

// Store defines the behaviors required for persisting appointments and their reminder state.
type Store interface {
	// Init executes the initial schema setup. Safe to call repeatedly.
	Init() error
	// Create persists a new appointment with reminder_sent=0 and returns its generated id.
	Create(a Appointment) (int64, error)
	// GetByID retrieves a single appointment, returning sql.ErrNoRows if not found.
	GetByID(id int64) (Appointment, error)
	// GetAll retrieves appointments, newest first, up to limit. A negative limit returns all.
	GetAll(limit int) ([]Appointment, error)
	// FindDueReminders retrieves unsent appointments whose date equals targetDate exactly.
	FindDueReminders(targetDate string) ([]Appointment, error)
	// MarkReminderSent flags the appointment so it is never selected again. No-op for unknown ids.
	MarkReminderSent(id int64) error
	// Ping verifies the database is reachable.
	Ping() error
}
