package database

const schema = `
CREATE TABLE IF NOT EXISTS appointments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    patient_name TEXT,
    patient_phone TEXT,
    doctor_name TEXT,
    doctor_phone TEXT,
    appointment_date TEXT,
    appointment_time TEXT,
    reminder_sent INTEGER DEFAULT 0,
    encrypted INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_due_reminders ON appointments (appointment_date, reminder_sent);
`
