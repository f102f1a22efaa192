package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/symptomsync/healthai/backend/internal/model/record"
	"github.com/symptomsync/healthai/backend/internal/service/ai"
	"github.com/symptomsync/healthai/backend/internal/service/conversation"
)

var (
	ErrUserRequired  = errors.New("user id is required")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrBusy          = errors.New("a message is already being sent")
	ErrQuotaExceeded = errors.New("daily message limit reached")
	ErrAggregation   = errors.New("failed to collect health records")
	ErrModel         = errors.New("ai request failed")
	ErrAIUnavailable = errors.New("ai service unavailable")
)

// Collector reads the record snapshot of a user.
type Collector interface {
	Collect(ctx context.Context, userID string) (record.Snapshot, error)
}

// Formatter renders a snapshot into summary text.
type Formatter interface {
	Format(snapshot record.Snapshot) string
}

// Options tunes the pages created by a Service.
type Options struct {
	DailyQuota  int
	InitialUsed int
	Now         func() time.Time
}

// Service owns one chat page per user.
type Service struct {
	mu        sync.Mutex
	pages     map[string]*Page
	records   Collector
	formatter Formatter
	completer ai.Completer
	store     conversation.Store
	opts      Options
}

// NewService wires the send pipeline collaborators. completer may be nil, in
// which case every send fails with ErrAIUnavailable after aggregation.
func NewService(records Collector, formatter Formatter, completer ai.Completer, store conversation.Store, opts Options) *Service {
	if opts.DailyQuota <= 0 {
		opts.DailyQuota = 5
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		pages:     make(map[string]*Page),
		records:   records,
		formatter: formatter,
		completer: completer,
		store:     store,
		opts:      opts,
	}
}

// Open returns the page of userID, hydrating its conversation on first use.
func (s *Service) Open(ctx context.Context, userID string) (*Page, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if page, ok := s.pages[userID]; ok {
		return page, nil
	}

	page := newPage(userID, s)
	if err := page.conv.Hydrate(ctx, userID); err != nil {
		return nil, err
	}
	s.pages[userID] = page
	return page, nil
}

// Close drops the page of userID. In-flight sends finish against the dropped
// page and their results are no longer observable through Open.
func (s *Service) Close(userID string) {
	s.mu.Lock()
	delete(s.pages, userID)
	s.mu.Unlock()
}
