// Package engine orchestrates LLM exchanges: it builds the outbound
// message list from stored history plus new input, drives the
// streaming HTTP call, routes decoded chunks to the live-update sink,
// and commits the completed exchange to the conversation store.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"chatbox/src/chat"
	"chatbox/src/convstore"
	"chatbox/src/llmclient"
	"chatbox/src/settings"
)

// transportErrMsg is the single user-visible message for any network
// or HTTP failure during an exchange.
const transportErrMsg = "Error communicating with the LLM API"

// SendRequest carries one outgoing user message. An empty
// ConversationID starts a fresh conversation.
type SendRequest struct {
	Message        string
	Context        string
	Model          string
	ConversationID string
}

// Engine runs one exchange at a time against the configured backend.
//
// Two concurrent Sends against the same conversation id are not
// defended against: the second commit would overwrite the first's
// record wholesale. Single active exchange per surface is the
// operating assumption.
type Engine struct {
	settings *settings.Store
	store    *convstore.Store
	client   *llmclient.Client
	logger   *slog.Logger

	mu   sync.RWMutex
	sink Sink
}

// New creates an engine and wires the store's change notifications to
// the attached sink.
func New(st *settings.Store, store *convstore.Store, client *llmclient.Client, sink Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NopSink{}
	}
	e := &Engine{
		settings: st,
		store:    store,
		client:   client,
		logger:   logger.With("component", "engine"),
		sink:     sink,
	}
	store.SetNotify(func(conversations []chat.Conversation) {
		e.currentSink().OnConversationListChanged(conversations)
	})
	return e
}

// SetSink attaches a presentation surface.
func (e *Engine) SetSink(s Sink) {
	if s == nil {
		s = NopSink{}
	}
	e.mu.Lock()
	e.sink = s
	e.mu.Unlock()
}

// DetachSink disconnects the presentation surface. An in-flight
// stream keeps running and its commit is still persisted; only the
// notifications stop.
func (e *Engine) DetachSink() {
	e.SetSink(NopSink{})
}

func (e *Engine) currentSink() Sink {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sink
}

// Send runs one full exchange: resolve model, load or create the
// conversation, stream the response, commit. On any failure the store
// is left untouched and exactly one error notification reaches the
// sink; the echoed user turn stays visible on the surface but is
// never persisted unanswered.
func (e *Engine) Send(ctx context.Context, req SendRequest) (chat.Conversation, error) {
	logger := e.logger.With("exchange_id", uuid.NewString(), "model", req.Model)

	model, err := e.settings.FindModel(req.Model)
	if err != nil {
		logger.Warn("model resolution failed", "error", err)
		if errors.Is(err, settings.ErrNoModels) {
			e.currentSink().OnError("No LLM models configured. Please add models in settings.")
		} else {
			e.currentSink().OnError("Selected LLM model not found in configuration.")
		}
		return chat.Conversation{}, err
	}

	conversation, err := e.loadOrCreate(req.ConversationID, req.Model)
	if err != nil {
		logger.Error("failed to load conversation", "error", err)
		e.currentSink().OnError("Failed to load conversation.")
		return chat.Conversation{}, err
	}
	logger = logger.With("conversation_id", conversation.ID)

	userContent := chat.ComposePrompt(req.Context, req.Message)
	outbound := buildMessages(model.SystemPrompt, conversation.Messages, userContent)
	conversation.Append(chat.RoleUser, userContent)

	stream, err := e.client.CreateChatCompletionStream(ctx, model, outbound)
	if err != nil {
		logger.Error("failed to open stream", "error", err)
		e.currentSink().OnError(transportErrMsg)
		return chat.Conversation{}, err
	}
	defer stream.Close()

	// Optimistic local echo: shown as soon as the request is in
	// flight, independent of how the stream ends.
	e.currentSink().OnUserEcho(req.Message)

	for {
		chunk, recvErr := stream.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				break
			}
			logger.Error("stream failed", "error", recvErr)
			e.currentSink().OnError(transportErrMsg)
			return chat.Conversation{}, recvErr
		}
		e.currentSink().OnStreamChunk(chunk)
	}

	conversation.Append(chat.RoleAssistant, stream.Response())
	if err := e.store.Upsert(conversation); err != nil {
		logger.Error("failed to persist conversation", "error", err)
		e.currentSink().OnError("Failed to save conversation: " + err.Error())
		return chat.Conversation{}, err
	}

	logger.Info("exchange committed", "messages", len(conversation.Messages))
	return conversation, nil
}

// loadOrCreate fetches the conversation by id, or starts a fresh one.
// A supplied id that is not stored yet is reused rather than rejected:
// the caller may have generated it before the first successful commit.
func (e *Engine) loadOrCreate(id, modelName string) (chat.Conversation, error) {
	if id == "" {
		return chat.Conversation{ID: chat.NewConversationID(), Model: modelName}, nil
	}
	conversation, err := e.store.Find(id)
	if err != nil {
		if errors.Is(err, convstore.ErrNotFound) {
			return chat.Conversation{ID: id, Model: modelName}, nil
		}
		return chat.Conversation{}, err
	}
	return conversation, nil
}

// buildMessages assembles the outbound sequence: system prompt, full
// prior history in order, then the new user turn.
func buildMessages(systemPrompt string, history []chat.Message, userContent string) []chat.Message {
	messages := make([]chat.Message, 0, len(history)+2)
	messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, chat.Message{Role: chat.RoleUser, Content: userContent})
	return messages
}
