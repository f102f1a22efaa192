package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/symptomsync/healthai/backend/internal/model/chat"
	"github.com/symptomsync/healthai/backend/internal/service/ai"
	"github.com/symptomsync/healthai/backend/internal/service/conversation"
	"github.com/symptomsync/healthai/backend/internal/service/quota"
)

// Page is the chat state of one user: the conversation, the send state
// machine and the daily quota gate. At most one send is in flight per page.
type Page struct {
	userID    string
	conv      *conversation.State
	gate      *quota.Gate
	records   Collector
	formatter Formatter
	completer ai.Completer
	now       func() time.Time

	mu    sync.Mutex
	phase chat.Phase
}

// SendResult is the outcome of a successful send.
type SendResult struct {
	Reply  chat.Turn   `json:"reply"`
	Turns  []chat.Turn `json:"turns"`
	Status chat.Status `json:"status"`
}

func newPage(userID string, s *Service) *Page {
	return &Page{
		userID:    userID,
		conv:      conversation.NewState(s.store),
		gate:      quota.NewGate(s.opts.DailyQuota, s.opts.InitialUsed),
		records:   s.records,
		formatter: s.formatter,
		completer: s.completer,
		now:       s.opts.Now,
		phase:     chat.PhaseIdle,
	}
}

// UserID returns the owner of the page.
func (p *Page) UserID() string {
	return p.userID
}

// Send runs the pipeline for one user message: aggregate records, format the
// summary, append the user turn, ask the model and append its reply.
//
// A blank input is rejected before anything changes. A failed aggregation
// appends nothing; a failed model call keeps the user turn. In every case the
// page returns to idle.
func (p *Page) Send(ctx context.Context, input string) (*SendResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyMessage
	}

	p.mu.Lock()
	if p.phase.Busy() {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	if !p.gate.Take() {
		p.phase = chat.PhaseBlocked
		p.mu.Unlock()
		slog.Info("daily quota reached", "component", "chat", "user", p.userID)
		return nil, ErrQuotaExceeded
	}
	p.phase = chat.PhaseAggregating
	p.mu.Unlock()
	defer p.setPhase(chat.PhaseIdle)

	snapshot, err := p.records.Collect(ctx, p.userID)
	if err != nil {
		slog.Error("send aborted while collecting records", "component", "chat", "user", p.userID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAggregation, err)
	}

	p.setPhase(chat.PhaseFormatting)
	summaryText := p.formatter.Format(snapshot)

	if err := p.conv.Append(ctx, chat.UserTurn(input, p.now())); err != nil {
		slog.Error("failed to store user turn", "component", "chat", "user", p.userID, "error", err)
		return nil, err
	}

	p.setPhase(chat.PhaseAwaitingModel)
	if p.completer == nil {
		return nil, ErrAIUnavailable
	}

	reply, err := p.completer.Complete(ctx, ai.Request{
		History: ai.BuildHistory(p.conv.Turns(), input),
		Message: input,
		Context: summaryText,
	})
	if err != nil {
		slog.Error("send aborted while awaiting model", "component", "chat", "user", p.userID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}

	p.setPhase(chat.PhaseAppendingReply)
	modelTurn := chat.ModelTurn(reply, p.now())
	if err := p.conv.Append(ctx, modelTurn); err != nil {
		slog.Error("failed to store model turn", "component", "chat", "user", p.userID, "error", err)
		return nil, err
	}

	slog.Info("chat turn completed", "component", "chat", "user", p.userID, "turns", p.conv.Len())

	return &SendResult{
		Reply:  modelTurn,
		Turns:  p.conv.Turns(),
		Status: p.status(chat.PhaseIdle),
	}, nil
}

// Clear empties the conversation and its stored copy.
func (p *Page) Clear(ctx context.Context) error {
	return p.conv.Clear(ctx)
}

// Turns returns the conversation in display order.
func (p *Page) Turns() []chat.Turn {
	return p.conv.Turns()
}

// Status reports the send state, quota and conversation size.
func (p *Page) Status() chat.Status {
	p.mu.Lock()
	phase := p.phase
	p.mu.Unlock()
	return p.status(phase)
}

// DismissUpgrade hides the upgrade prompt and leaves the blocked state.
func (p *Page) DismissUpgrade() chat.Status {
	p.gate.Dismiss()

	p.mu.Lock()
	if p.phase == chat.PhaseBlocked {
		p.phase = chat.PhaseIdle
	}
	phase := p.phase
	p.mu.Unlock()
	return p.status(phase)
}

func (p *Page) status(phase chat.Phase) chat.Status {
	used, limit, prompt := p.gate.Snapshot()
	return chat.Status{
		Phase:         phase,
		Loading:       phase.Busy(),
		DailyCount:    used,
		DailyQuota:    limit,
		UpgradePrompt: prompt,
		MessageCount:  p.conv.Len(),
	}
}

func (p *Page) setPhase(phase chat.Phase) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
}
