package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/symptomsync/healthai/backend/internal/model/record"
)

const ownerColumn = "user_profile_id"

func userQuery(userID string) url.Values {
	return url.Values{
		"select":    {"*"},
		ownerColumn: {"eq." + userID},
	}
}

// AppointmentsByUser reads appointment_reminders owned by userID.
func (c *Client) AppointmentsByUser(ctx context.Context, userID string) ([]record.Appointment, error) {
	var out []record.Appointment
	if err := c.do(ctx, http.MethodGet, "/rest/v1/appointment_reminders", userQuery(userID), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MedicationsByUser reads medication_reminders owned by userID.
func (c *Client) MedicationsByUser(ctx context.Context, userID string) ([]record.MedicationReminder, error) {
	var out []record.MedicationReminder
	if err := c.do(ctx, http.MethodGet, "/rest/v1/medication_reminders", userQuery(userID), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HealthLogsByUser reads health_logs owned by userID in table order.
func (c *Client) HealthLogsByUser(ctx context.Context, userID string) ([]record.HealthLog, error) {
	var out []record.HealthLog
	if err := c.do(ctx, http.MethodGet, "/rest/v1/health_logs", userQuery(userID), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
