package reminder

import (
	"fmt"

	"github.com/circa10a/appointment-reminder/internal/reminder/database"
)

// PatientMessage is the reminder sent to the patient's phone.
func PatientMessage(a database.Appointment) string {
	return fmt.Sprintf("Reminder: Your appointment with Dr. %s is tomorrow at %s.", a.DoctorName, a.Time)
}

// DoctorMessage is the reminder sent to the doctor's phone.
func DoctorMessage(a database.Appointment) string {
	return fmt.Sprintf("Reminder: You have an appointment with %s tomorrow at %s.", a.PatientName, a.Time)
}
