// Package realtime fans notifications out to the connections of one user.
package realtime

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserRequired    = errors.New("user id is required")
	ErrMessageRequired = errors.New("message is required")
)

const subscriptionBuffer = 16

// Notification is one delivered broadcast.
type Notification struct {
	Channel  string    `json:"channel"`
	Event    string    `json:"event"`
	Message  string    `json:"message"`
	Toast    string    `json:"toast"`
	SenderID string    `json:"senderId,omitempty"`
	SentAt   time.Time `json:"sentAt"`
}

// ChannelName returns the broadcast channel of userID.
func ChannelName(userID string) string {
	return "user-channel-" + userID
}

// ToastText renders the transient alert shown for a notification.
func ToastText(message string) string {
	return fmt.Sprintf("Notification: %s from another device or tab.", strings.ReplaceAll(message, ".", ""))
}

// Hub tracks subscriptions per user. Deliveries are best effort: there is no
// replay, no acknowledgement and a full subscriber buffer drops the message.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]*Subscription
	now  func() time.Time
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[string]*Subscription),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Subscription is a live handle on a user's channel. Close releases it.
type Subscription struct {
	ID     string
	UserID string

	hub  *Hub
	ch   chan Notification
	once sync.Once
}

// C delivers notifications until the subscription is closed.
func (s *Subscription) C() <-chan Notification {
	return s.ch
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// Subscribe opens a subscription on userID's channel.
func (h *Hub) Subscribe(userID string) (*Subscription, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	sub := &Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		hub:    h,
		ch:     make(chan Notification, subscriptionBuffer),
	}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[string]*Subscription)
	}
	h.subs[userID][sub.ID] = sub
	h.mu.Unlock()

	slog.Debug("subscribed", "component", "realtime", "channel", ChannelName(userID), "subscription", sub.ID)
	return sub, nil
}

// Broadcast delivers message to every subscription of userID except the one
// identified by senderID. It returns the number of deliveries.
func (h *Hub) Broadcast(userID, senderID, event, message string) (int, error) {
	if userID == "" {
		return 0, ErrUserRequired
	}
	if strings.TrimSpace(message) == "" {
		return 0, ErrMessageRequired
	}
	if event == "" {
		event = "notification"
	}

	n := Notification{
		Channel:  ChannelName(userID),
		Event:    event,
		Message:  message,
		Toast:    ToastText(message),
		SenderID: senderID,
		SentAt:   h.now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, sub := range h.subs[userID] {
		if id == senderID {
			continue
		}
		select {
		case sub.ch <- n:
			delivered++
		default:
			slog.Warn("dropping notification for slow subscriber", "component", "realtime", "channel", n.Channel, "subscription", id)
		}
	}
	return delivered, nil
}

// Subscribers returns the number of open subscriptions of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[sub.UserID]
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(h.subs, sub.UserID)
	}
	slog.Debug("unsubscribed", "component", "realtime", "channel", ChannelName(sub.UserID), "subscription", sub.ID)
}
