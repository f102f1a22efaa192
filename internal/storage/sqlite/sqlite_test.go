package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptomsync/healthai/backend/internal/model/record"
	"github.com/symptomsync/healthai/backend/internal/service/conversation"
)

var _ conversation.Store = (*KVStore)(nil)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	kv := NewKVStore(openMemory(t))

	_, ok, err := kv.Get(ctx, "chat-u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "chat-u1", `[{"role":"user","text":"hi"}]`))
	require.NoError(t, kv.Set(ctx, "chat-u1", `[]`))

	value, ok, err := kv.Get(ctx, "chat-u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)

	require.NoError(t, kv.Remove(ctx, "chat-u1"))
	_, ok, err = kv.Get(ctx, "chat-u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(openMemory(t))

	at := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	snap := record.Snapshot{
		Appointments: []record.Appointment{
			{ID: "a1", UserID: "u1", Name: "Dentist", Date: at},
			{ID: "a2", UserID: "u2", Name: "Cardiology", Date: at},
		},
		Medications: []record.MedicationReminder{
			{ID: "m1", UserID: "u1", Name: "Ibuprofen", Dosage: ptr("200mg"), ReminderTime: at},
		},
		HealthLogs: []record.HealthLog{
			{ID: "h1", UserID: "u1", SymptomType: ptr("cough"), Severity: ptr(2), StartDate: at},
			{ID: "h2", UserID: "u1", StartDate: at.Add(time.Hour)},
		},
	}
	require.NoError(t, store.InsertSnapshot(ctx, snap))

	appointments, err := store.AppointmentsByUser(ctx, "u1")
	require.NoError(t, err)
	if diff := cmp.Diff(snap.Appointments[:1], appointments); diff != "" {
		t.Fatalf("appointments mismatch (-want +got):\n%s", diff)
	}

	medications, err := store.MedicationsByUser(ctx, "u1")
	require.NoError(t, err)
	if diff := cmp.Diff(snap.Medications, medications); diff != "" {
		t.Fatalf("medications mismatch (-want +got):\n%s", diff)
	}

	logs, err := store.HealthLogsByUser(ctx, "u1")
	require.NoError(t, err)
	if diff := cmp.Diff(snap.HealthLogs, logs); diff != "" {
		t.Fatalf("health logs mismatch (-want +got):\n%s", diff)
	}

	none, err := store.HealthLogsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "healthai.db")

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	// reopening applies the schema again without error
	db, err = Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
