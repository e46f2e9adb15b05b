package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/circa10a/appointment-reminder/internal/reminder/database"
	"github.com/circa10a/appointment-reminder/internal/reminder/notifier"
	"github.com/go-playground/validator/v10"
	"github.com/jmhodges/clock"
)

const (
	defaultLogLevel = "info"
	defaultTimezone = "Local"
)

// Config holds configuration for creating a Service.
type Config struct {
	AccountSID    string `validate:"required_if=Provider twilio"`
	AuthToken     string `validate:"required_if=Provider twilio"`
	Cron          string
	DatabasePath  string
	EncryptPhones bool
	FromNumber    string `validate:"required_if=Provider twilio"`
	LogFormat     string
	LogLevel      string
	// MetricsAddr, when set, serves /health and /metrics while scheduling.
	MetricsAddr     string
	NotifierURL     string
	Provider        string
	RequireDelivery bool
	Timezone        string
}

// NewAppointment is the input for AddAppointment.
type NewAppointment struct {
	PatientName  string `validate:"required"`
	PatientPhone string `validate:"required"`
	DoctorName   string `validate:"required"`
	DoctorPhone  string `validate:"required"`
	Date         string `validate:"required,datetime=2006-01-02"`
	Time         string `validate:"required"`
}

// Service wires storage, the notification sender and the sweep together.
type Service struct {
	Config

	Store    database.Store
	Sender   notifier.Sender
	Sweeper  *Sweeper
	Metrics  *Metrics
	Logger   *slog.Logger
	location *time.Location
	validate *validator.Validate
}

// New returns a new service configured from cfg.
func New(cfg *Config) (*Service, error) {
	service := &Service{
		Config:   *cfg,
		validate: validator.New(),
	}

	if service.LogLevel == "" {
		service.LogLevel = defaultLogLevel
	}

	if service.Provider == "" {
		service.Provider = notifier.ProviderTwilio
	}

	if service.Timezone == "" {
		service.Timezone = defaultTimezone
	}

	if service.Cron == "" {
		service.Cron = DefaultCron
	}

	if service.DatabasePath == "" {
		service.DatabasePath = database.DefaultPath
	}

	service.LogFormat = strings.ToLower(service.LogFormat)
	service.Provider = strings.ToLower(service.Provider)

	// Ensure configuration options are valid/compatible
	err := service.validateConfig()
	if err != nil {
		return nil, err
	}

	// Logging
	logLevel, err := log.ParseLevel(service.LogLevel)
	if err != nil {
		return nil, err
	}

	logHandler := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       getLogFormatter(service.LogFormat),
		Level:           logLevel,
	})
	service.Logger = slog.New(logHandler)

	service.location, err = time.LoadLocation(service.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", service.Timezone, err)
	}

	// Database
	store, err := database.NewSQLiteStore(service.DatabasePath, service.EncryptPhones)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	service.Store = store

	// Notifications
	sender, err := notifier.New(notifier.Config{
		Provider:   service.Provider,
		AccountSID: service.AccountSID,
		AuthToken:  service.AuthToken,
		From:       service.FromNumber,
		URL:        service.NotifierURL,
	}, service.Logger)
	if err != nil {
		return nil, err
	}
	service.Sender = sender

	service.Metrics = NewMetrics()
	store.OnUnreadable = func(id int64, err error) {
		service.Logger.Error("Skipping unreadable appointment", "id", id, "error", err)
		service.Metrics.appointment("unreadable")
	}

	service.Sweeper = &Sweeper{
		Store:           service.Store,
		Sender:          service.Sender,
		Clock:           clock.New(),
		Location:        service.location,
		RequireDelivery: service.RequireDelivery,
		Metrics:         service.Metrics,
		Logger:          service.Logger,
	}

	return service, nil
}

// Init ensures the appointments table exists.
func (s *Service) Init() error {
	err := s.Store.Init()
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}

	return nil
}

// AddAppointment validates and stores a new appointment, returning its id.
func (s *Service) AddAppointment(in NewAppointment) (int64, error) {
	err := s.getValidator().Struct(in)
	if err != nil {
		return 0, fmt.Errorf("invalid appointment: %w", err)
	}

	id, err := s.Store.Create(database.Appointment{
		PatientName:  in.PatientName,
		PatientPhone: in.PatientPhone,
		DoctorName:   in.DoctorName,
		DoctorPhone:  in.DoctorPhone,
		Date:         in.Date,
		Time:         in.Time,
	})
	if err != nil {
		return 0, err
	}

	s.Logger.Info("Added appointment", "id", id, "date", in.Date, "time", in.Time)

	return id, nil
}

// Appointments lists stored appointments, newest first.
func (s *Service) Appointments(limit int) ([]database.Appointment, error) {
	return s.Store.GetAll(limit)
}

// Sweep runs a single reminder sweep.
func (s *Service) Sweep() (Summary, error) {
	return s.Sweeper.Sweep()
}

// Schedule runs sweeps on the configured cron expression until ctx is cancelled.
// When MetricsAddr is set, /health and /metrics are served for the same lifetime.
func (s *Service) Schedule(ctx context.Context) error {
	if s.MetricsAddr != "" {
		metrics := s.Metrics
		if metrics == nil {
			metrics = NewMetrics()
		}

		go serveStatus(ctx, s.MetricsAddr, NewStatusHandler(s.Store, metrics), s.Logger)
	}

	scheduler := &Scheduler{
		Sweeper:  s.Sweeper,
		Spec:     s.Cron,
		Location: s.location,
		Logger:   s.Logger,
	}

	return scheduler.Start(ctx)
}

// validateConfig validates the configuration and checks for conflicting parameters.
func (s *Service) validateConfig() error {
	err := s.getValidator().Struct(s.Config)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			missing := make([]string, 0, len(validationErrs))
			for _, fe := range validationErrs {
				missing = append(missing, fe.Field())
			}
			return fmt.Errorf("%s provider requires: %s", s.Provider, strings.Join(missing, ", "))
		}
		return err
	}

	if !slices.Contains(notifier.Providers, s.Provider) {
		return fmt.Errorf("invalid provider %q. Valid providers are: %v", s.Provider, notifier.Providers)
	}

	validLogFormats := []string{"json", "text", ""}
	if !slices.Contains(validLogFormats, s.LogFormat) {
		return fmt.Errorf("invalid log format. Valid log formats are: %v", validLogFormats)
	}

	if s.LogLevel != "" {
		_, err := log.ParseLevel(s.LogLevel)
		if err != nil {
			return err
		}
	}

	_, err = ParseCron(s.Cron)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.Cron, err)
	}

	return nil
}

func (s *Service) getValidator() *validator.Validate {
	if s.validate == nil {
		s.validate = validator.New()
	}

	return s.validate
}

// getLogFormatter converts a log format string to usable log formatter
func getLogFormatter(logformat string) log.Formatter {
	switch logformat {
	case "json":
		return log.JSONFormatter
	}
	return log.TextFormatter
}
