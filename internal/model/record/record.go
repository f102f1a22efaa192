package record

import "time"

// Appointment is an upcoming appointment reminder.
type Appointment struct {
	ID     string    `json:"id" yaml:"id"`
	UserID string    `json:"user_profile_id" yaml:"user_id"`
	Name   string    `json:"appointment_name" yaml:"name"`
	Date   time.Time `json:"date" yaml:"date"`
}

// MedicationReminder is a scheduled medication intake.
type MedicationReminder struct {
	ID           string    `json:"id" yaml:"id"`
	UserID       string    `json:"user_profile_id" yaml:"user_id"`
	Name         string    `json:"medication_name" yaml:"name"`
	Dosage       *string   `json:"dosage" yaml:"dosage"`
	ReminderTime time.Time `json:"reminder_time" yaml:"reminder_time"`
	Recurrence   *string   `json:"recurrence" yaml:"recurrence"`
}

// HealthLog is a logged symptom episode.
type HealthLog struct {
	ID          string    `json:"id" yaml:"id"`
	UserID      string    `json:"user_profile_id" yaml:"user_id"`
	SymptomType *string   `json:"symptom_type" yaml:"symptom_type"`
	Severity    *int      `json:"severity" yaml:"severity"`
	StartDate   time.Time `json:"start_date" yaml:"start_date"`
}

// Snapshot bundles the three collections read for one chat turn.
type Snapshot struct {
	Appointments []Appointment
	Medications  []MedicationReminder
	HealthLogs   []HealthLog
}
