package conversation

import (
	"context"
	"net/http"

	"github.com/cloudwego/eino/schema"

	errx "github.com/bunkai-app/server/internal/core/error"
	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/providers"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// Engine drives a bounded Japanese practice conversation: an opening
// greeting, contextual replies with a completion signal, and a post-hoc
// competency score. It holds no conversation state; the caller supplies the
// history every turn and owns persistence.
type Engine struct {
	factory providers.Factory
}

func NewEngine(factory providers.Factory) *Engine {
	return &Engine{factory: factory}
}

// GenerateGreeting produces the single seed assistant message of a new
// conversation. Invoked exactly once, at creation.
func (e *Engine) GenerateGreeting(ctx context.Context, topic string, provider providers.Provider, modelName string) (string, error) {
	systemPrompt, err := RenderPracticeSystem(ctx, topic)
	if err != nil {
		return "", errx.New(err, errx.KindInternal, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	reply, err := e.invokeReply(ctx, provider, modelName, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(greetingKickoff),
	})
	if err != nil {
		return "", err
	}
	// a greeting cannot complete the conversation; only the message is used
	return reply.Message, nil
}

// Reply produces the assistant's next turn given the full prior history and
// the new user message. Its IsConversationComplete flag is the sole trigger
// for the Active → Complete transition; the engine itself mutates nothing.
func (e *Engine) Reply(ctx context.Context, topic string, history []model.ConversationMessage, userMessage string, provider providers.Provider, modelName string) (*model.ConversationReply, error) {
	systemPrompt, err := RenderPracticeSystem(ctx, topic)
	if err != nil {
		return nil, errx.New(err, errx.KindInternal, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case model.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	messages = append(messages, schema.UserMessage(userMessage))

	return e.invokeReply(ctx, provider, modelName, messages)
}

// Score evaluates the user's messages over the complete transcript,
// including the closing exchange. Invoked once, after a reply returns
// IsConversationComplete.
func (e *Engine) Score(ctx context.Context, topic string, messages []model.ConversationMessage, provider providers.Provider, modelName string) (*model.ConversationScore, error) {
	chatModel, err := e.factory.CreateChatModel(ctx, provider, modelName)
	if err != nil {
		return nil, err
	}

	promptText, err := RenderScorePrompt(ctx, topic, messages)
	if err != nil {
		return nil, errx.New(err, errx.KindInternal, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	out, err := chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(promptText),
	})
	if err != nil {
		logx.Error().Err(err).
			Str("provider", string(provider)).
			Str("model", modelName).
			Msg("score model invocation failed")
		return nil, errx.NewProvider(err, "conversation scoring failed")
	}
	if out == nil {
		return nil, errx.NewSchemaViolation(nil, "empty model response")
	}

	return ParseScore(out.Content)
}

func (e *Engine) invokeReply(ctx context.Context, provider providers.Provider, modelName string, messages []*schema.Message) (*model.ConversationReply, error) {
	chatModel, err := e.factory.CreateChatModel(ctx, provider, modelName)
	if err != nil {
		return nil, err
	}

	out, err := chatModel.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).
			Str("provider", string(provider)).
			Str("model", modelName).
			Msg("reply model invocation failed")
		return nil, errx.NewProvider(err, "conversation reply failed")
	}
	if out == nil {
		return nil, errx.NewSchemaViolation(nil, "empty model response")
	}

	return ParseReply(out.Content)
}
