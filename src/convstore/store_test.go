package convstore

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbox/src/chat"
)

const storePath = "/data/chatbox/conversations.json"

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewStore(fs, storePath, nil), fs
}

func conv(id, question string) chat.Conversation {
	return chat.Conversation{
		ID:    id,
		Model: "Default Model",
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: question},
		},
	}
}

func TestListEmptyStore(t *testing.T) {
	store, _ := newTestStore(t)
	conversations, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestUpsertAppendsAndReplaces(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(conv("1", "first")))
	require.NoError(t, store.Upsert(conv("2", "second")))

	conversations, err := store.List()
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "1", conversations[0].ID, "listing follows file order, not recency")

	updated := conv("1", "first")
	updated.Append(chat.RoleAssistant, "answer")
	require.NoError(t, store.Upsert(updated))

	conversations, err = store.List()
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Len(t, conversations[0].Messages, 2)
}

func TestUpsertIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	c := conv("1", "hello")

	require.NoError(t, store.Upsert(c))
	require.NoError(t, store.Upsert(c))

	conversations, err := store.List()
	require.NoError(t, err)
	assert.Len(t, conversations, 1, "applying the same record twice must not duplicate it")
}

func TestFind(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Upsert(conv("42", "q")))

	c, err := store.Find("42")
	require.NoError(t, err)
	assert.Equal(t, "42", c.ID)

	_, err = store.Find("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Upsert(conv("1", "a")))
	require.NoError(t, store.Upsert(conv("2", "b")))

	require.NoError(t, store.Delete("1"))

	conversations, err := store.List()
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "2", conversations[0].ID)
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Upsert(conv("1", "a")))

	require.NoError(t, store.Delete("nope"))

	conversations, err := store.List()
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestMutationsNotify(t *testing.T) {
	store, _ := newTestStore(t)

	var calls [][]chat.Conversation
	store.SetNotify(func(conversations []chat.Conversation) {
		calls = append(calls, conversations)
	})

	require.NoError(t, store.Upsert(conv("1", "a")))
	require.Len(t, calls, 1)
	assert.Len(t, calls[0], 1)

	require.NoError(t, store.Delete("1"))
	require.Len(t, calls, 2)
	assert.Empty(t, calls[1])

	// A no-op delete does not rewrite the file and does not notify.
	require.NoError(t, store.Delete("nope"))
	assert.Len(t, calls, 2)
}

func TestFileIsAlwaysValidJSONArray(t *testing.T) {
	store, fs := newTestStore(t)

	require.NoError(t, store.Upsert(conv("1", "a")))
	require.NoError(t, store.Delete("1"))

	data, err := afero.ReadFile(fs, storePath)
	require.NoError(t, err)
	var parsed []chat.Conversation
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Empty(t, parsed)
}

func TestConcurrentUpsertsLoseNoWrites(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			assert.NoError(t, store.Upsert(conv(id, "q")))
		}(i)
	}
	wg.Wait()

	conversations, err := store.List()
	require.NoError(t, err)
	assert.Len(t, conversations, 10, "serialized read-modify-write must not drop a writer")
}

func TestCorruptFileSurfacesError(t *testing.T) {
	store, fs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, storePath, []byte("{broken"), 0644))

	_, err := store.List()
	assert.Error(t, err)
	err = store.Upsert(conv("1", "a"))
	assert.Error(t, err, "a mutation must not silently clobber an unreadable store")
}
