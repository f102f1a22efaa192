package ai

import (
	"context"
	"strings"

	"github.com/elliotchance/pie/v2"

	"github.com/symptomsync/healthai/backend/internal/model/chat"
)

// DefaultDirective is the system instruction used when a request carries none.
const DefaultDirective = "You are Health AI, a friendly and knowledgeable health assistant. " +
	"Use the user's appointments, medications and recent health logs to give personalised, practical answers. " +
	"You are not a doctor: for diagnoses, emergencies or worsening symptoms, advise the user to contact a healthcare professional."

// Part is a text fragment of a content entry.
type Part struct {
	Text string `json:"text"`
}

// Content is one history entry in role + parts shape.
type Content struct {
	Role  chat.Role `json:"role"`
	Parts []Part    `json:"parts"`
}

// Text joins the text parts of c.
func (c Content) Text() string {
	if len(c.Parts) == 1 {
		return c.Parts[0].Text
	}
	return strings.Join(pie.Map(c.Parts, func(p Part) string { return p.Text }), "")
}

// Request is a single completion round trip.
type Request struct {
	// History is the model-facing conversation, ending with the new message.
	History []Content
	// Message is the new user message.
	Message string
	// Directive overrides DefaultDirective when set.
	Directive string
	// Context is the record summary text.
	Context string
}

// Completer returns the model's reply to a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// BuildHistory maps turns to the model history shape. A history that does not
// start with a user turn is replaced by a single user entry holding message.
func BuildHistory(turns []chat.Turn, message string) []Content {
	history := pie.Map(turns, func(t chat.Turn) Content {
		return Content{Role: t.Role, Parts: []Part{{Text: t.Text}}}
	})
	if len(history) == 0 || history[0].Role != chat.RoleUser {
		history = []Content{{Role: chat.RoleUser, Parts: []Part{{Text: message}}}}
	}
	return history
}

// SystemInstruction combines the directive and the record summary.
func (r Request) SystemInstruction() string {
	directive := strings.TrimSpace(r.Directive)
	if directive == "" {
		directive = DefaultDirective
	}
	if strings.TrimSpace(r.Context) == "" {
		return directive
	}
	return directive + "\n\nHere is the user's current health data:\n" + r.Context
}

// Prior returns the history preceding the new message. When History already
// ends with Message as a user entry, that entry is dropped.
func (r Request) Prior() []Content {
	n := len(r.History)
	if n > 0 && r.History[n-1].Role == chat.RoleUser && r.History[n-1].Text() == r.Message {
		return r.History[:n-1]
	}
	return r.History
}
