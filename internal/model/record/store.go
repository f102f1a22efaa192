package record

import (
	"context"
	"sync"

	"github.com/elliotchance/pie/v2"
)

// Store exposes the user-scoped, read-only record accessors used by chat.
type Store interface {
	AppointmentsByUser(ctx context.Context, userID string) ([]Appointment, error)
	MedicationsByUser(ctx context.Context, userID string) ([]MedicationReminder, error)
	HealthLogsByUser(ctx context.Context, userID string) ([]HealthLog, error)
}

// MemoryStore implements Store with in-memory slices, kept in insertion order.
type MemoryStore struct {
	mu           sync.RWMutex
	appointments []Appointment
	medications  []MedicationReminder
	healthLogs   []HealthLog
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddAppointment appends an appointment.
func (s *MemoryStore) AddAppointment(a Appointment) {
	s.mu.Lock()
	s.appointments = append(s.appointments, a)
	s.mu.Unlock()
}

// AddMedication appends a medication reminder.
func (s *MemoryStore) AddMedication(m MedicationReminder) {
	s.mu.Lock()
	s.medications = append(s.medications, m)
	s.mu.Unlock()
}

// AddHealthLog appends a health log.
func (s *MemoryStore) AddHealthLog(l HealthLog) {
	s.mu.Lock()
	s.healthLogs = append(s.healthLogs, l)
	s.mu.Unlock()
}

// AppointmentsByUser returns the appointments owned by userID.
func (s *MemoryStore) AppointmentsByUser(_ context.Context, userID string) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByUser(s.appointments, userID, func(a Appointment) string { return a.UserID }), nil
}

// MedicationsByUser returns the medication reminders owned by userID.
func (s *MemoryStore) MedicationsByUser(_ context.Context, userID string) ([]MedicationReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByUser(s.medications, userID, func(m MedicationReminder) string { return m.UserID }), nil
}

// HealthLogsByUser returns the health logs owned by userID.
func (s *MemoryStore) HealthLogsByUser(_ context.Context, userID string) ([]HealthLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByUser(s.healthLogs, userID, func(l HealthLog) string { return l.UserID }), nil
}

func filterByUser[T any](items []T, userID string, owner func(T) string) []T {
	return pie.Filter(items, func(item T) bool { return owner(item) == userID })
}
