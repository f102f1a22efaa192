package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	"github.com/symptomsync/healthai/backend/internal/service/realtime"
)

// withUser trusts the ?user= parameter so tests can skip the auth provider.
func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get("user"); id != "" {
			r = r.WithContext(modelauth.WithPrincipal(r.Context(), modelauth.Principal{
				User: modelauth.User{ID: id},
			}))
		}
		next.ServeHTTP(w, r)
	})
}

func setupServer(t *testing.T) (*httptest.Server, *realtime.Hub) {
	t.Helper()

	hub := realtime.NewHub()
	h := New(hub)
	h.heartbeat = 20 * time.Millisecond

	r := chi.NewRouter()
	r.Use(withUser)
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, user string) (*websocket.Conn, string) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var hello struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "connected", hello.Type)
	require.Equal(t, "user-channel-"+user, hello.Data["channel"])
	return conn, hello.Data["subscriptionId"]
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocketBroadcastSkipsSender(t *testing.T) {
	srv, hub := setupServer(t)

	sender, _ := dial(t, srv, "u1")
	receiver, _ := dial(t, srv, "u1")
	other, _ := dial(t, srv, "u2")
	require.Equal(t, 2, hub.Subscribers("u1"))

	require.NoError(t, sender.WriteJSON(map[string]string{
		"type":    "broadcast",
		"event":   "notification",
		"message": "Medication reminder saved.",
	}))

	got := readFrame(t, receiver)
	require.Equal(t, "notification", got.Type)
	var n realtime.Notification
	require.NoError(t, json.Unmarshal(got.Data, &n))
	assert.Equal(t, "Notification: Medication reminder saved from another device or tab.", n.Toast)
	assert.Equal(t, "user-channel-u1", n.Channel)

	ack := readFrame(t, sender)
	assert.Equal(t, "ack", ack.Type)
	assert.JSONEq(t, `{"delivered":1}`, string(ack.Data))

	for _, c := range []*websocket.Conn{sender, receiver, other} {
		require.NoError(t, c.Close())
	}
	require.Eventually(t, func() bool {
		return hub.Subscribers("u1") == 0 && hub.Subscribers("u2") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketRejectsUnknownFrames(t *testing.T) {
	srv, hub := setupServer(t)
	conn, _ := dial(t, srv, "u1")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "shout"}))
	got := readFrame(t, conn)
	assert.Equal(t, "error", got.Type)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketRequiresPrincipal(t *testing.T) {
	srv, _ := setupServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBroadcastEndpoint(t *testing.T) {
	srv, hub := setupServer(t)
	conn, subID := dial(t, srv, "u1")
	defer conn.Close()

	resp, err := http.Post(srv.URL+"/broadcast?user=u1", "application/json",
		strings.NewReader(`{"message":"Appointment added."}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	got := readFrame(t, conn)
	assert.Equal(t, "notification", got.Type)

	// the subscription that sent the message is skipped
	resp2, err := http.Post(srv.URL+"/broadcast?user=u1", "application/json",
		strings.NewReader(`{"message":"again","senderId":"`+subID+`"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	assert.EqualValues(t, 0, body["delivered"])
	assert.Equal(t, 1, hub.Subscribers("u1"))
}

func TestBroadcastEndpointRequiresMessage(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Post(srv.URL+"/broadcast?user=u1", "application/json", strings.NewReader(`{"message":" "}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamDeliversNotifications(t *testing.T) {
	srv, hub := setupServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream?user=u1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, _ := nextEvent()
	require.Equal(t, "connected", event)
	require.Equal(t, 1, hub.Subscribers("u1"))

	_, err = hub.Broadcast("u1", "", "reminder", "Take your meds.")
	require.NoError(t, err)

	event, data := nextEvent()
	assert.Equal(t, "reminder", event)
	var n realtime.Notification
	require.NoError(t, json.Unmarshal([]byte(data), &n))
	assert.Equal(t, "Notification: Take your meds from another device or tab.", n.Toast)

	cancel()
	require.Eventually(t, func() bool { return hub.Subscribers("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
