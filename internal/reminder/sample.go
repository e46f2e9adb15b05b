package reminder

// sampleAppointment is inserted by the default entry point, dated for tomorrow.
var sampleAppointment = NewAppointment{
	PatientName:  "Dan Sande",
	PatientPhone: "+254797971425",
	DoctorName:   "Dr. Son",
	DoctorPhone:  "+254740946260",
	Time:         "14:00",
}

// SeedSample inserts the sample appointment dated at the sweep's target date so the
// next sweep picks it up.
func (s *Service) SeedSample() (int64, error) {
	appt := sampleAppointment
	appt.Date = s.Sweeper.TargetDate()

	return s.AddAppointment(appt)
}
