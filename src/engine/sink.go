package engine

import "chatbox/src/chat"

// Sink receives live-update notifications from the engine. Calls are
// fire-and-forget with at-least-once delivery to whichever surface is
// currently attached; when no surface is attached the notifications
// are dropped, not queued.
type Sink interface {
	// OnUserEcho mirrors the user's message back to the transcript as
	// soon as the exchange is underway.
	OnUserEcho(text string)

	// OnStreamChunk delivers one flush-ready piece of assistant text.
	OnStreamChunk(text string)

	// OnModelsChanged delivers the configured model list.
	OnModelsChanged(models []chat.ModelConfig)

	// OnConversationListChanged delivers the refreshed stored list
	// after any store mutation.
	OnConversationListChanged(conversations []chat.Conversation)

	// OnConversationLoaded delivers a full conversation for display.
	OnConversationLoaded(conversation chat.Conversation)

	// OnError reports a user-visible failure message.
	OnError(message string)
}

// NopSink drops every notification. Installed when the presentation
// surface detaches so an in-flight exchange can still run to commit.
type NopSink struct{}

func (NopSink) OnUserEcho(string)                             {}
func (NopSink) OnStreamChunk(string)                          {}
func (NopSink) OnModelsChanged([]chat.ModelConfig)            {}
func (NopSink) OnConversationListChanged([]chat.Conversation) {}
func (NopSink) OnConversationLoaded(chat.Conversation)        {}
func (NopSink) OnError(string)                                {}
