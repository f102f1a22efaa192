package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptomsync/healthai/backend/internal/model/record"
)

// slowStore fails medications immediately and blocks the other reads until
// their context is cancelled.
type slowStore struct {
	medErr error
}

func (s slowStore) AppointmentsByUser(ctx context.Context, _ string) ([]record.Appointment, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s slowStore) MedicationsByUser(context.Context, string) ([]record.MedicationReminder, error) {
	return nil, s.medErr
}

func (s slowStore) HealthLogsByUser(ctx context.Context, _ string) ([]record.HealthLog, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCollect(t *testing.T) {
	store := record.NewMemoryStore()
	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	store.AddAppointment(record.Appointment{ID: "a1", UserID: "u1", Name: "Dentist", Date: at})
	store.AddAppointment(record.Appointment{ID: "a2", UserID: "u2", Name: "Other", Date: at})
	store.AddMedication(record.MedicationReminder{ID: "m1", UserID: "u1", Name: "Aspirin", ReminderTime: at})
	store.AddHealthLog(record.HealthLog{ID: "h1", UserID: "u1", StartDate: at})
	store.AddHealthLog(record.HealthLog{ID: "h2", UserID: "u1", StartDate: at})

	snap, err := NewAggregator(store).Collect(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, snap.Appointments, 1)
	assert.Equal(t, "Dentist", snap.Appointments[0].Name)
	assert.Len(t, snap.Medications, 1)
	assert.Len(t, snap.HealthLogs, 2)
}

func TestCollectFailsFast(t *testing.T) {
	boom := errors.New("medication_reminders: permission denied")

	done := make(chan struct{})
	var (
		snap record.Snapshot
		err  error
	)
	go func() {
		defer close(done)
		snap, err = NewAggregator(slowStore{medErr: boom}).Collect(context.Background(), "u1")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not cancel the sibling reads")
	}

	require.ErrorIs(t, err, boom)
	assert.Empty(t, snap.Appointments)
	assert.Empty(t, snap.HealthLogs)
}

func TestCollectRequiresUser(t *testing.T) {
	_, err := NewAggregator(record.NewMemoryStore()).Collect(context.Background(), "")
	assert.ErrorIs(t, err, ErrUserRequired)
}
