package engine

import (
	"context"
	"errors"
	"fmt"

	"chatbox/src/convstore"
	"chatbox/src/settings"
)

// Request is the closed set of inbound control messages a
// presentation surface can send to the core. Each variant carries a
// typed payload; Dispatcher.Handle matches them exhaustively.
type Request interface {
	isRequest()
}

// SendMessageRequest starts an exchange.
type SendMessageRequest struct {
	Message        string
	Context        string
	Model          string
	ConversationID string
}

// GetModelsRequest asks for the configured model list.
type GetModelsRequest struct{}

// GetConversationsRequest asks for the stored conversation list.
type GetConversationsRequest struct{}

// LoadConversationRequest asks for one conversation by id.
type LoadConversationRequest struct {
	ConversationID string
}

// DeleteConversationRequest removes one conversation by id.
type DeleteConversationRequest struct {
	ConversationID string
}

func (SendMessageRequest) isRequest()        {}
func (GetModelsRequest) isRequest()          {}
func (GetConversationsRequest) isRequest()   {}
func (LoadConversationRequest) isRequest()   {}
func (DeleteConversationRequest) isRequest() {}

// Dispatcher routes inbound requests to the engine and stores and
// pushes the results to the attached sink.
type Dispatcher struct {
	engine   *Engine
	settings *settings.Store
	store    *convstore.Store
}

// NewDispatcher creates a dispatcher over an engine's collaborators.
func NewDispatcher(e *Engine) *Dispatcher {
	return &Dispatcher{engine: e, settings: e.settings, store: e.store}
}

// Handle processes one inbound request. Recoverable problems are
// reported through the sink; returned errors indicate the request
// itself failed.
func (d *Dispatcher) Handle(ctx context.Context, req Request) error {
	sink := d.engine.currentSink()

	switch r := req.(type) {
	case SendMessageRequest:
		_, err := d.engine.Send(ctx, SendRequest{
			Message:        r.Message,
			Context:        r.Context,
			Model:          r.Model,
			ConversationID: r.ConversationID,
		})
		return err

	case GetModelsRequest:
		s, err := d.settings.Load()
		if err != nil && !errors.Is(err, settings.ErrSettingsCorrupt) {
			return err
		}
		// A corrupt file degrades to an empty list; the surface shows
		// "no models configured" instead of crashing.
		sink.OnModelsChanged(s.Models)
		return nil

	case GetConversationsRequest:
		conversations, err := d.store.List()
		if err != nil {
			return err
		}
		sink.OnConversationListChanged(conversations)
		return nil

	case LoadConversationRequest:
		conversation, err := d.store.Find(r.ConversationID)
		if err != nil {
			if errors.Is(err, convstore.ErrNotFound) {
				sink.OnError("Conversation not found.")
				return nil
			}
			return err
		}
		sink.OnConversationLoaded(conversation)
		return nil

	case DeleteConversationRequest:
		return d.store.Delete(r.ConversationID)

	default:
		return fmt.Errorf("unknown request type %T", req)
	}
}
