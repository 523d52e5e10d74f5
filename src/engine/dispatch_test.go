package engine

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbox/src/chat"
)

func TestDispatchGetModels(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	d := NewDispatcher(f.engine)

	require.NoError(t, d.Handle(context.Background(), GetModelsRequest{}))

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	require.Len(t, f.sink.models, 1)
	require.Len(t, f.sink.models[0], 1)
	assert.Equal(t, "Default Model", f.sink.models[0][0].Name)
}

func TestDispatchConversationRoundTrip(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	d := NewDispatcher(f.engine)
	ctx := context.Background()

	conversation := chat.Conversation{ID: "7", Model: "Default Model"}
	conversation.Append(chat.RoleUser, "q").Append(chat.RoleAssistant, "a")
	require.NoError(t, f.store.Upsert(conversation))

	require.NoError(t, d.Handle(ctx, GetConversationsRequest{}))
	require.NoError(t, d.Handle(ctx, LoadConversationRequest{ConversationID: "7"}))
	require.NoError(t, d.Handle(ctx, DeleteConversationRequest{ConversationID: "7"}))

	f.sink.mu.Lock()
	require.Len(t, f.sink.loaded, 1)
	assert.Equal(t, "7", f.sink.loaded[0].ID)
	lists := f.sink.lists
	f.sink.mu.Unlock()

	// upsert push, explicit list, delete push
	require.Len(t, lists, 3)
	assert.Empty(t, lists[2])

	conversations, err := f.store.List()
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestDispatchLoadMissingConversation(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	d := NewDispatcher(f.engine)

	require.NoError(t, d.Handle(context.Background(), LoadConversationRequest{ConversationID: "missing"}))

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	assert.Empty(t, f.sink.loaded)
	require.Len(t, f.sink.errors, 1)
}

func TestDispatchDeleteMissingIsQuiet(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	d := NewDispatcher(f.engine)

	assert.NoError(t, d.Handle(context.Background(), DeleteConversationRequest{ConversationID: "missing"}))
	assert.Empty(t, f.sink.errors)
}
