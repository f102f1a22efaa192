package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptomsync/healthai/backend/internal/model/chat"
)

type failingStore struct {
	*MemoryStore
	setErr error
	getErr error
}

func (f failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func stored(t *testing.T, store Store, userID string) []chat.Turn {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), Key(userID))
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var turns []chat.Turn
	require.NoError(t, json.Unmarshal([]byte(raw), &turns))
	return turns
}

func TestKey(t *testing.T) {
	assert.Equal(t, "chat-u1", Key("u1"))
}

func TestAppendPersistsFullSequence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	state := NewState(store)
	require.NoError(t, state.Hydrate(ctx, "u1"))

	at := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, state.Append(ctx, chat.UserTurn("hi", at)))
	require.NoError(t, state.Append(ctx, chat.ModelTurn("hello", at)))

	if diff := cmp.Diff(state.Turns(), stored(t, store, "u1")); diff != "" {
		t.Fatalf("memory and store disagree (-memory +store):\n%s", diff)
	}
	assert.Equal(t, 2, state.Len())
	assert.Equal(t, "u1", state.UserID())
}

func TestAppendWriteFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := failingStore{MemoryStore: NewMemoryStore()}
	state := NewState(store)
	require.NoError(t, state.Hydrate(ctx, "u1"))
	require.NoError(t, state.Append(ctx, chat.UserTurn("kept", time.Time{})))

	broken := failingStore{MemoryStore: store.MemoryStore, setErr: errors.New("quota exceeded")}
	state.store = broken
	err := state.Append(ctx, chat.UserTurn("lost", time.Time{}))
	require.Error(t, err)

	assert.Equal(t, []chat.Turn{chat.UserTurn("kept", time.Time{})}, state.Turns())
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  *string
		want []chat.Turn
	}{
		{name: "missing key"},
		{name: "unreadable value", raw: ptr("{not json")},
		{name: "empty value", raw: ptr("")},
		{
			name: "stored turns",
			raw:  ptr(`[{"role":"user","text":"a"},{"role":"model","text":"b"}]`),
			want: []chat.Turn{{Role: chat.RoleUser, Text: "a"}, {Role: chat.RoleModel, Text: "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.raw != nil {
				require.NoError(t, store.Set(ctx, Key("u1"), *tt.raw))
			}

			state := NewState(store)
			require.NoError(t, state.Hydrate(ctx, "u1"))
			assert.Equal(t, tt.want, state.Turns())
		})
	}
}

func TestHydrateStoreError(t *testing.T) {
	state := NewState(failingStore{MemoryStore: NewMemoryStore(), getErr: errors.New("disk")})
	assert.Error(t, state.Hydrate(context.Background(), "u1"))
}

func TestClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	state := NewState(store)
	require.NoError(t, state.Hydrate(ctx, "u1"))
	require.NoError(t, state.Append(ctx, chat.UserTurn("hi", time.Time{})))

	require.NoError(t, state.Clear(ctx))

	_, ok, err := store.Get(ctx, Key("u1"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, state.Turns())
}

func TestTurnsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	state := NewState(NewMemoryStore())
	require.NoError(t, state.Hydrate(ctx, "u1"))
	require.NoError(t, state.Append(ctx, chat.UserTurn("hi", time.Time{})))

	turns := state.Turns()
	turns[0].Text = "changed"
	assert.Equal(t, "hi", state.Turns()[0].Text)
}

func ptr(s string) *string { return &s }
