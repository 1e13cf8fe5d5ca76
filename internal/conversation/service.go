package conversation

import (
	"context"
	"errors"
	"time"

	errx "github.com/bunkai-app/server/internal/core/error"
	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/providers"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// TurnResult is the outcome of one accepted conversation turn.
type TurnResult struct {
	Reply      model.ConversationMessage
	IsComplete bool
	Score      *model.ConversationScore
}

// Service composes the Engine with the conversation store: it applies turns
// in order, appends exactly one user + one assistant message per accepted
// turn, and commits the one-way completion transition after scoring.
type Service struct {
	engine *Engine
	repo   model.ConversationRepository
	now    func() time.Time
}

func NewService(engine *Engine, repo model.ConversationRepository) *Service {
	return &Service{engine: engine, repo: repo, now: time.Now}
}

// Start creates a new Active conversation seeded with a generated greeting.
func (s *Service) Start(ctx context.Context, topic string, provider providers.Provider, modelName string) (*model.Conversation, error) {
	greeting, err := s.engine.GenerateGreeting(ctx, topic, provider, modelName)
	if err != nil {
		return nil, err
	}

	conv, err := s.repo.Create(ctx, topic, string(provider), modelName, model.ConversationMessage{
		Role:      model.RoleAssistant,
		Content:   greeting,
		Timestamp: s.now(),
	})
	if err != nil {
		return nil, err
	}

	logx.Info().Str("conversation_id", conv.ID).Str("topic", topic).Msg("conversation started")
	return conv, nil
}

// PostMessage applies one user turn. On the turn that completes the
// conversation it scores the full transcript exactly once and commits
// completion; a scoring failure leaves the conversation un-scored and
// retryable, with the turn messages already persisted.
func (s *Service) PostMessage(ctx context.Context, id, message string) (*TurnResult, error) {
	conv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.IsComplete {
		return nil, errx.NewValidation(model.ErrConversationComplete, "conversation is already complete")
	}

	provider, ok := providers.Parse(conv.Provider)
	if !ok {
		return nil, errx.NewValidation(nil, "conversation has an unsupported provider")
	}

	reply, err := s.engine.Reply(ctx, conv.Topic, conv.Messages, message, provider, conv.Model)
	if err != nil {
		// no messages were appended; the caller can retry the turn
		return nil, err
	}

	userMessage := model.ConversationMessage{
		Role:      model.RoleUser,
		Content:   message,
		Timestamp: s.now(),
	}
	assistantMessage := model.ConversationMessage{
		Role:      model.RoleAssistant,
		Content:   reply.Message,
		Timestamp: s.now(),
	}

	if err := s.repo.AppendMessages(ctx, id, userMessage, assistantMessage); err != nil {
		if errors.Is(err, model.ErrConversationComplete) {
			return nil, errx.NewValidation(err, "conversation is already complete")
		}
		return nil, err
	}

	result := &TurnResult{Reply: assistantMessage, IsComplete: reply.IsConversationComplete}
	if !reply.IsConversationComplete {
		return result, nil
	}

	transcript := append(append([]model.ConversationMessage{}, conv.Messages...), userMessage, assistantMessage)
	score, err := s.engine.Score(ctx, conv.Topic, transcript, provider, conv.Model)
	if err != nil {
		// the conversation stays un-scored; completion is not committed
		return nil, err
	}

	if err := s.repo.Complete(ctx, id, *score); err != nil {
		return nil, err
	}

	logx.Info().Str("conversation_id", id).Int("score", score.Score).Msg("conversation completed")
	result.Score = score
	return result, nil
}
