package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/circa10a/appointment-reminder/internal/reminder/secrets"

	// Import the sqlite driver that requires no CGO deps
	_ "modernc.org/sqlite"
)

const (
	// DefaultPath is the database file used when none is configured, relative to the working directory.
	DefaultPath = "appointments.db"
	// keySuffix is appended to the database path to locate the phone encryption key.
	keySuffix = ".key"
	// appointmentColumns centralizes the field list to prevent Scan errors
	appointmentColumns = `id, patient_name, patient_phone, doctor_name, doctor_phone, appointment_date, appointment_time, reminder_sent, encrypted`
)

// SQLiteStore is an implementation of the Store interface for a single SQLite file.
// Every public operation opens its own connection and closes it before returning.
type SQLiteStore struct {
	Path          string
	EncryptionKey []byte
	// OnUnreadable is called for each encrypted row that GetAll or FindDueReminders
	// skips because its phone numbers cannot be decrypted. Optional.
	OnUnreadable  func(id int64, err error)
}

// NewSQLiteStore returns a store for the database file at dbPath. When encryptPhones is set,
// a key file is loaded (or created) next to the database and phone numbers are encrypted at rest.
func NewSQLiteStore(dbPath string, encryptPhones bool) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = DefaultPath
	}

	dir := filepath.Dir(dbPath)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store := &SQLiteStore{Path: dbPath}

	if encryptPhones {
		key, err := secrets.LoadOrCreateKey(store.keyPath())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize encryption key: %w", err)
		}

		if len(key) == 0 {
			return nil, errors.New("encryption key content must be more than 0 bytes")
		}

		store.EncryptionKey = key
	}

	return store, nil
}

// Init creates the appointments table if it does not already exist.
func (s *SQLiteStore) Init() error {
	return s.withDB(func(db *sql.DB) error {
		_, err := db.Exec(schema)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		return nil
	})
}

// Create inserts a new appointment with its reminder flag cleared and returns the generated id.
func (s *SQLiteStore) Create(a Appointment) (int64, error) {
	patientPhone, doctorPhone, encrypted, err := s.sealPhones(a)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO appointments (patient_name, patient_phone, doctor_name, doctor_phone, appointment_date, appointment_time, reminder_sent, encrypted)
              VALUES (?, ?, ?, ?, ?, ?, 0, ?)`

	var id int64
	err = s.withDB(func(db *sql.DB) error {
		res, err := db.Exec(query,
			a.PatientName,
			patientPhone,
			a.DoctorName,
			doctorPhone,
			a.Date,
			a.Time,
			encrypted,
		)
		if err != nil {
			return fmt.Errorf("failed to insert appointment: %w", err)
		}

		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetByID returns a single appointment by its ID, returning sql.ErrNoRows if not found.
func (s *SQLiteStore) GetByID(id int64) (Appointment, error) {
	appointments, err := s.query(false, fmt.Sprintf("SELECT %s FROM appointments WHERE id = ?", appointmentColumns), id)
	if err != nil {
		return Appointment{}, err
	}

	if len(appointments) == 0 {
		return Appointment{}, sql.ErrNoRows
	}

	return appointments[0], nil
}

// GetAll returns appointments ordered newest first up to the provided limit.
// Rows that cannot be decrypted are skipped and reported through OnUnreadable.
func (s *SQLiteStore) GetAll(limit int) ([]Appointment, error) {
	return s.query(true, fmt.Sprintf("SELECT %s FROM appointments ORDER BY id DESC LIMIT ?", appointmentColumns), limit)
}

// FindDueReminders returns unsent appointments dated exactly targetDate, in storage order.
// Rows that cannot be decrypted are skipped and reported through OnUnreadable so one
// bad row does not hold back every other reminder for the day.
func (s *SQLiteStore) FindDueReminders(targetDate string) ([]Appointment, error) {
	return s.query(true, fmt.Sprintf("SELECT %s FROM appointments WHERE appointment_date = ? AND reminder_sent = 0", appointmentColumns), targetDate)
}

// MarkReminderSent sets reminder_sent for the appointment with the given ID.
func (s *SQLiteStore) MarkReminderSent(id int64) error {
	return s.withDB(func(db *sql.DB) error {
		_, err := db.Exec(`UPDATE appointments SET reminder_sent = 1 WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to mark reminder as sent: %w", err)
		}

		return nil
	})
}

// Ping checks that the database file can be opened.
func (s *SQLiteStore) Ping() error {
	return s.withDB(func(db *sql.DB) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		return db.PingContext(ctx)
	})
}

// query runs a select on a fresh connection and scans the result.
func (s *SQLiteStore) query(skipUnreadable bool, query string, args ...any) ([]Appointment, error) {
	var appointments []Appointment

	err := s.withDB(func(db *sql.DB) error {
		rows, err := db.Query(query, args...)
		if err != nil {
			return err
		}

		defer func() { _ = rows.Close() }()

		appointments, err = s.scanAppointments(rows, skipUnreadable)
		return err
	})
	if err != nil {
		return nil, err
	}

	return appointments, nil
}

// scanAppointments is an internal helper that parses SQL rows into Appointment structs,
// decrypting phone numbers on encrypted rows. With skipUnreadable set, rows that fail to
// decrypt are left out instead of failing the whole result.
func (s *SQLiteStore) scanAppointments(rows *sql.Rows, skipUnreadable bool) ([]Appointment, error) {
	appointments := []Appointment{}
	for rows.Next() {
		a := Appointment{}
		var patientName, patientPhone, doctorName, doctorPhone sql.NullString
		var date, apptTime sql.NullString
		var reminderSent, encrypted sql.NullBool

		err := rows.Scan(
			&a.ID,
			&patientName,
			&patientPhone,
			&doctorName,
			&doctorPhone,
			&date,
			&apptTime,
			&reminderSent,
			&encrypted,
		)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		a.PatientName = patientName.String
		a.PatientPhone = patientPhone.String
		a.DoctorName = doctorName.String
		a.DoctorPhone = doctorPhone.String
		a.Date = date.String
		a.Time = apptTime.String
		a.ReminderSent = reminderSent.Bool

		if encrypted.Bool {
			err = s.openPhones(&a)
			if err != nil {
				err = fmt.Errorf("appointment %d has encrypted phones that could not be read with key file %s: %w", a.ID, s.keyPath(), err)
				if !skipUnreadable {
					return nil, err
				}

				if s.OnUnreadable != nil {
					s.OnUnreadable(a.ID, err)
				}

				continue
			}
		}

		appointments = append(appointments, a)
	}

	return appointments, rows.Err()
}

// keyPath is where NewSQLiteStore keeps the phone encryption key for this database.
func (s *SQLiteStore) keyPath() string {
	return s.Path + keySuffix
}

// withDB opens a connection, hands it to fn and closes it before returning.
func (s *SQLiteStore) withDB(fn func(db *sql.DB) error) error {
	db, err := sqliteConnect(s.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	defer func() { _ = db.Close() }()

	return fn(db)
}

// sqliteConnect is an internal helper that sets up the database connection.
func sqliteConnect(dbPath string) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?%s", dbPath, params.Encode()))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
