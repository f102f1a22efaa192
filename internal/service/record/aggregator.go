package record

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/symptomsync/healthai/backend/internal/model/record"
)

var ErrUserRequired = errors.New("user id is required")

// Aggregator reads the three record collections a chat turn needs.
type Aggregator struct {
	store record.Store
}

// NewAggregator returns an Aggregator reading from store.
func NewAggregator(store record.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Collect fetches appointments, medications and health logs concurrently and
// waits for all three. The first failure cancels the remaining reads and is
// returned without a partial snapshot.
func (a *Aggregator) Collect(ctx context.Context, userID string) (record.Snapshot, error) {
	if userID == "" {
		return record.Snapshot{}, ErrUserRequired
	}

	var (
		meds  []record.MedicationReminder
		appts []record.Appointment
		logs  []record.HealthLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meds, err = a.store.MedicationsByUser(gctx, userID)
		return wrap(err, "medication_reminders", userID)
	})
	g.Go(func() error {
		var err error
		appts, err = a.store.AppointmentsByUser(gctx, userID)
		return wrap(err, "appointment_reminders", userID)
	})
	g.Go(func() error {
		var err error
		logs, err = a.store.HealthLogsByUser(gctx, userID)
		return wrap(err, "health_logs", userID)
	})

	if err := g.Wait(); err != nil {
		return record.Snapshot{}, err
	}

	slog.Debug("collected records",
		"component", "record",
		"user", userID,
		"appointments", len(appts),
		"medications", len(meds),
		"health_logs", len(logs),
	)

	return record.Snapshot{
		Appointments: appts,
		Medications:  meds,
		HealthLogs:   logs,
	}, nil
}

func wrap(err error, collection, userID string) error {
	if err == nil {
		return nil
	}
	return oops.In("record").With("collection", collection, "user", userID).Wrapf(err, "failed to read %s", collection)
}
