package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestToastText(t *testing.T) {
	assert.Equal(t, "Notification: New appointment added from another device or tab.", ToastText("New appointment added."))
	assert.Equal(t, "Notification: v12 released from another device or tab.", ToastText("v1.2 released"))
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "user-channel-u1", ChannelName("u1"))
}

func TestBroadcastSkipsSender(t *testing.T) {
	hub := NewHub()

	a, err := hub.Subscribe("u1")
	require.NoError(t, err)
	defer a.Close()
	b, err := hub.Subscribe("u1")
	require.NoError(t, err)
	defer b.Close()
	other, err := hub.Subscribe("u2")
	require.NoError(t, err)
	defer other.Close()

	delivered, err := hub.Broadcast("u1", a.ID, "", "Medication logged.")
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	n := <-b.C()
	assert.Equal(t, "user-channel-u1", n.Channel)
	assert.Equal(t, "notification", n.Event)
	assert.Equal(t, "Notification: Medication logged from another device or tab.", n.Toast)
	assert.Equal(t, a.ID, n.SenderID)

	assert.Empty(t, a.C())
	assert.Empty(t, other.C())
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()
	sub, err := hub.Subscribe("u1")
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < subscriptionBuffer; i++ {
		delivered, err := hub.Broadcast("u1", "", "tick", "msg")
		require.NoError(t, err)
		require.Equal(t, 1, delivered)
	}

	delivered, err := hub.Broadcast("u1", "", "tick", "overflow")
	require.NoError(t, err)
	assert.Zero(t, delivered)
	assert.Len(t, sub.C(), subscriptionBuffer)
}

func TestBroadcastValidation(t *testing.T) {
	hub := NewHub()

	_, err := hub.Broadcast("", "", "", "hi")
	assert.ErrorIs(t, err, ErrUserRequired)

	_, err = hub.Broadcast("u1", "", "", "   ")
	assert.ErrorIs(t, err, ErrMessageRequired)

	_, err = hub.Subscribe("")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestCloseUnsubscribes(t *testing.T) {
	hub := NewHub()
	sub, err := hub.Subscribe("u1")
	require.NoError(t, err)
	require.Equal(t, 1, hub.Subscribers("u1"))

	sub.Close()
	sub.Close()

	assert.Zero(t, hub.Subscribers("u1"))
	_, open := <-sub.C()
	assert.False(t, open)

	delivered, err := hub.Broadcast("u1", "", "", "nobody listens")
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestConcurrentBroadcastAndClose(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		sub, err := hub.Subscribe("u1")
		require.NoError(t, err)

		wg.Add(2)
		go func() {
			defer wg.Done()
			for range sub.C() {
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = hub.Broadcast("u1", "", "tick", "msg")
			}
			sub.Close()
		}()
	}
	wg.Wait()

	assert.Zero(t, hub.Subscribers("u1"))
}
