package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	"github.com/symptomsync/healthai/backend/internal/service/realtime"
)

type inboundMessage struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Message string `json:"message"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func newOutgoing(kind string, data any) outgoingMessage {
	return outgoingMessage{Type: kind, Data: data, Timestamp: time.Now().Unix()}
}

// handleWebSocket 将连接订阅到当前用户的频道。收到的 "broadcast" 消息会推送给
// 该用户的其他连接，每条投递都以 "notification" 消息写回。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	principal, ok := modelauth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	userID := principal.User.ID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "component", "realtime", "user", userID, "error", err)
		return
	}
	defer conn.Close()

	sub, err := h.hub.Subscribe(userID)
	if err != nil {
		_ = conn.WriteJSON(newOutgoing("error", map[string]string{"message": err.Error()}))
		return
	}
	defer sub.Close()

	slog.Info("websocket connected", "component", "realtime", "channel", realtime.ChannelName(userID), "subscription", sub.ID)

	if err := conn.WriteJSON(newOutgoing("connected", map[string]string{
		"channel":        realtime.ChannelName(userID),
		"subscriptionId": sub.ID,
	})); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	replies := make(chan outgoingMessage, 4)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, sub, replies)
	}()
	defer func() {
		cancel()
		<-writerDone
	}()

	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "component", "realtime", "subscription", sub.ID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))

		reply := h.handleMessage(userID, sub.ID, msg)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) handleMessage(userID, subscriptionID string, msg inboundMessage) outgoingMessage {
	switch msg.Type {
	case "broadcast":
		delivered, err := h.hub.Broadcast(userID, subscriptionID, msg.Event, msg.Message)
		if err != nil {
			return newOutgoing("error", map[string]string{"message": err.Error()})
		}
		return newOutgoing("ack", map[string]int{"delivered": delivered})
	case "ping":
		return newOutgoing("pong", nil)
	default:
		return newOutgoing("error", map[string]string{"message": "unsupported message type: " + msg.Type})
	}
}

// writeLoop 握手之后唯一的写入方
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *realtime.Subscription, replies <-chan outgoingMessage) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub.C():
			if !ok {
				return
			}
			err = conn.WriteJSON(newOutgoing("notification", n))
		case reply := <-replies:
			err = conn.WriteJSON(reply)
		case <-ticker.C:
			err = conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			slog.Debug("websocket write failed", "component", "realtime", "subscription", sub.ID, "error", err)
			// 让读循环退出
			conn.Close()
			return
		}
	}
}
