package model

import (
	"context"
	"errors"
)

// ErrConversationNotFound is returned when no conversation exists for an id.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrConversationComplete is returned when a caller tries to append to a
// conversation that has already made the one-way transition to complete.
var ErrConversationComplete = errors.New("conversation is already complete")

// ConversationRepository owns the authoritative Conversation record. The
// engines never touch it; the service layer composes the two.
type ConversationRepository interface {
	// Create stores a new Active conversation seeded with the greeting message.
	Create(ctx context.Context, topic, provider, modelName string, greeting ConversationMessage) (*Conversation, error)

	// Get loads a conversation by id; ErrConversationNotFound when absent.
	Get(ctx context.Context, id string) (*Conversation, error)

	// AppendMessages appends turn messages in order. Fails with
	// ErrConversationComplete once the conversation is complete.
	AppendMessages(ctx context.Context, id string, messages ...ConversationMessage) error

	// Complete transitions the conversation to complete and attaches the
	// score. The transition is one-way; completing twice is an error.
	Complete(ctx context.Context, id string, score ConversationScore) error

	// Delete removes the conversation.
	Delete(ctx context.Context, id string) error
}
