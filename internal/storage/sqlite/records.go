package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/samber/oops"

	"github.com/symptomsync/healthai/backend/internal/model/record"
)

// RecordStore serves the health record tables.
type RecordStore struct {
	db *DB
}

// NewRecordStore returns a RecordStore backed by db.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) AppointmentsByUser(ctx context.Context, userID string) ([]record.Appointment, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, user_profile_id, appointment_name, date
		 FROM appointment_reminders WHERE user_profile_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, queryErr(err, "appointment_reminders", userID)
	}
	defer rows.Close()

	var out []record.Appointment
	for rows.Next() {
		var (
			a    record.Appointment
			date string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &date); err != nil {
			return nil, queryErr(err, "appointment_reminders", userID)
		}
		if a.Date, err = parseTime(date); err != nil {
			return nil, queryErr(err, "appointment_reminders", userID)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "appointment_reminders", userID)
	}
	return out, nil
}

func (s *RecordStore) MedicationsByUser(ctx context.Context, userID string) ([]record.MedicationReminder, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, user_profile_id, medication_name, dosage, reminder_time, recurrence
		 FROM medication_reminders WHERE user_profile_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, queryErr(err, "medication_reminders", userID)
	}
	defer rows.Close()

	var out []record.MedicationReminder
	for rows.Next() {
		var (
			m                  record.MedicationReminder
			dosage, recurrence sql.NullString
			at                 string
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &dosage, &at, &recurrence); err != nil {
			return nil, queryErr(err, "medication_reminders", userID)
		}
		if m.ReminderTime, err = parseTime(at); err != nil {
			return nil, queryErr(err, "medication_reminders", userID)
		}
		m.Dosage = stringPtr(dosage)
		m.Recurrence = stringPtr(recurrence)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "medication_reminders", userID)
	}
	return out, nil
}

func (s *RecordStore) HealthLogsByUser(ctx context.Context, userID string) ([]record.HealthLog, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, user_profile_id, symptom_type, severity, start_date
		 FROM health_logs WHERE user_profile_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, queryErr(err, "health_logs", userID)
	}
	defer rows.Close()

	var out []record.HealthLog
	for rows.Next() {
		var (
			l        record.HealthLog
			symptom  sql.NullString
			severity sql.NullInt64
			start    string
		)
		if err := rows.Scan(&l.ID, &l.UserID, &symptom, &severity, &start); err != nil {
			return nil, queryErr(err, "health_logs", userID)
		}
		if l.StartDate, err = parseTime(start); err != nil {
			return nil, queryErr(err, "health_logs", userID)
		}
		l.SymptomType = stringPtr(symptom)
		if severity.Valid {
			v := int(severity.Int64)
			l.Severity = &v
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "health_logs", userID)
	}
	return out, nil
}

// InsertSnapshot writes every row of snap in one transaction, replacing rows
// with the same id.
func (s *RecordStore) InsertSnapshot(ctx context.Context, snap record.Snapshot) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return oops.In("sqlite").Wrapf(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, a := range snap.Appointments {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO appointment_reminders (id, user_profile_id, appointment_name, date) VALUES (?, ?, ?, ?)`,
			a.ID, a.UserID, a.Name, formatTime(a.Date)); err != nil {
			return oops.In("sqlite").With("table", "appointment_reminders", "id", a.ID).Wrapf(err, "failed to insert row")
		}
	}
	for _, m := range snap.Medications {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO medication_reminders (id, user_profile_id, medication_name, dosage, reminder_time, recurrence) VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.UserID, m.Name, nullString(m.Dosage), formatTime(m.ReminderTime), nullString(m.Recurrence)); err != nil {
			return oops.In("sqlite").With("table", "medication_reminders", "id", m.ID).Wrapf(err, "failed to insert row")
		}
	}
	for _, l := range snap.HealthLogs {
		var severity sql.NullInt64
		if l.Severity != nil {
			severity = sql.NullInt64{Int64: int64(*l.Severity), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO health_logs (id, user_profile_id, symptom_type, severity, start_date) VALUES (?, ?, ?, ?, ?)`,
			l.ID, l.UserID, nullString(l.SymptomType), severity, formatTime(l.StartDate)); err != nil {
			return oops.In("sqlite").With("table", "health_logs", "id", l.ID).Wrapf(err, "failed to insert row")
		}
	}

	if err := tx.Commit(); err != nil {
		return oops.In("sqlite").Wrapf(err, "failed to commit records")
	}
	return nil
}

func queryErr(err error, table, userID string) error {
	return oops.In("sqlite").With("table", table, "user", userID).Wrapf(err, "failed to query records")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ record.Store = (*RecordStore)(nil)
