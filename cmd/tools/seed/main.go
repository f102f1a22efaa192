// Command healthai-seed prepares a local SQLite database: it applies the
// schema and loads health record fixtures for development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/symptomsync/healthai/backend/internal/logging"
	"github.com/symptomsync/healthai/backend/internal/model/record"
	"github.com/symptomsync/healthai/backend/internal/storage/sqlite"
)

// fixture is the YAML layout of a records file.
type fixture struct {
	Appointments []record.Appointment        `yaml:"appointments"`
	Medications  []record.MedicationReminder `yaml:"medications"`
	HealthLogs   []record.HealthLog          `yaml:"health_logs"`
}

func main() {
	logging.Preinit()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "healthai-seed",
		Short:         "Prepare the local SymptomSync database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "data/healthai.db", "SQLite database path")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := sqlite.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready at %s\n", db.Path())
			return nil
		},
	})

	var (
		file   string
		userID string
	)
	records := &cobra.Command{
		Use:   "records",
		Short: "Load appointment, medication and health log fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := loadFixture(file, userID)
			if err != nil {
				return err
			}

			db, err := sqlite.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := sqlite.NewRecordStore(db).InsertSnapshot(cmd.Context(), snap); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d appointments, %d medications, %d health logs into %s\n",
				len(snap.Appointments), len(snap.Medications), len(snap.HealthLogs), db.Path())
			return nil
		},
	}
	records.Flags().StringVar(&file, "file", "", "YAML fixture file")
	records.Flags().StringVar(&userID, "user", "", "override the owner of every row")
	_ = records.MarkFlagRequired("file")
	root.AddCommand(records)

	return root
}

// loadFixture reads path into a snapshot. Rows without an id get a random
// one; a non-empty userID replaces every owner.
func loadFixture(path, userID string) (record.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record.Snapshot{}, oops.In("seed").With("file", path).Wrapf(err, "failed to read fixture")
	}

	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return record.Snapshot{}, oops.In("seed").With("file", path).Wrapf(err, "failed to parse fixture")
	}

	for i := range f.Appointments {
		fill(&f.Appointments[i].ID, &f.Appointments[i].UserID, userID)
	}
	for i := range f.Medications {
		fill(&f.Medications[i].ID, &f.Medications[i].UserID, userID)
	}
	for i := range f.HealthLogs {
		fill(&f.HealthLogs[i].ID, &f.HealthLogs[i].UserID, userID)
	}

	snap := record.Snapshot{
		Appointments: f.Appointments,
		Medications:  f.Medications,
		HealthLogs:   f.HealthLogs,
	}
	if err := validateOwners(snap); err != nil {
		return record.Snapshot{}, oops.In("seed").With("file", path).Wrapf(err, "invalid fixture")
	}
	return snap, nil
}

func fill(id, owner *string, userID string) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if userID != "" {
		*owner = userID
	}
}

func validateOwners(snap record.Snapshot) error {
	for _, a := range snap.Appointments {
		if a.UserID == "" {
			return fmt.Errorf("appointment %s has no user_id", a.ID)
		}
	}
	for _, m := range snap.Medications {
		if m.UserID == "" {
			return fmt.Errorf("medication %s has no user_id", m.ID)
		}
	}
	for _, l := range snap.HealthLogs {
		if l.UserID == "" {
			return fmt.Errorf("health log %s has no user_id", l.ID)
		}
	}
	return nil
}
