// Package summary renders a user's records into the context text handed to
// the AI model.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/symptomsync/healthai/backend/internal/model/record"
)

const (
	DefaultLayout         = "1/2/2006, 3:04:05 PM"
	DefaultHealthLogLimit = 3

	notAvailable = "N/A"
	noneLine     = "- None\n"
)

// Formatter builds the summary text. Dates are rendered in Location with
// Layout, so output depends on both.
type Formatter struct {
	Layout         string
	Location       *time.Location
	HealthLogLimit int
}

// NewFormatter returns a Formatter with the given layout and zone. Zero
// values fall back to the defaults.
func NewFormatter(layout string, loc *time.Location, healthLogLimit int) *Formatter {
	if layout == "" {
		layout = DefaultLayout
	}
	if loc == nil {
		loc = time.Local
	}
	if healthLogLimit <= 0 {
		healthLogLimit = DefaultHealthLogLimit
	}
	return &Formatter{Layout: layout, Location: loc, HealthLogLimit: healthLogLimit}
}

// Format renders snapshot. Empty collections render a "- None" line and only
// the last HealthLogLimit health logs, by position, are included.
func (f *Formatter) Format(snapshot record.Snapshot) string {
	var b strings.Builder

	b.WriteString("Appointments:\n")
	if len(snapshot.Appointments) == 0 {
		b.WriteString(noneLine)
	}
	for _, a := range snapshot.Appointments {
		fmt.Fprintf(&b, "- %s on %s\n", a.Name, f.date(a.Date))
	}

	b.WriteString("\nMedications:\n")
	if len(snapshot.Medications) == 0 {
		b.WriteString(noneLine)
	}
	for _, m := range snapshot.Medications {
		fmt.Fprintf(&b, "- %s, dosage: %s, next time: %s, recurrence: %s\n",
			m.Name, orNA(m.Dosage), f.date(m.ReminderTime), orNA(m.Recurrence))
	}

	b.WriteString("\nRecent Health Logs:\n")
	if len(snapshot.HealthLogs) == 0 {
		b.WriteString(noneLine)
	}
	for _, l := range lastN(snapshot.HealthLogs, f.limit()) {
		severity := 0
		if l.Severity != nil {
			severity = *l.Severity
		}
		fmt.Fprintf(&b, "- Symptom: %s, severity: %d, start: %s\n",
			orNA(l.SymptomType), severity, f.date(l.StartDate))
	}

	return b.String()
}

func (f *Formatter) date(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	layout := f.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	return t.In(loc).Format(layout)
}

func (f *Formatter) limit() int {
	if f.HealthLogLimit <= 0 {
		return DefaultHealthLogLimit
	}
	return f.HealthLogLimit
}

func orNA(s *string) string {
	if s == nil {
		return notAvailable
	}
	return *s
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
