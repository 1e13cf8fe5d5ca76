package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/bunkai-app/server/internal/core/error"
	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/providers"
)

// --- mock provider backend ---

// scriptedChatModel returns canned responses in order, one per Generate call.
type scriptedChatModel struct {
	responses []string
	err       error
	calls     int
	inputs    [][]*schema.Message
}

func (m *scriptedChatModel) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.inputs = append(m.inputs, in)
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	i := m.calls - 1
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return schema.AssistantMessage(m.responses[i], nil), nil
}

func (m *scriptedChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

type stubFactory struct {
	chatModel einomodel.BaseChatModel
	err       error
}

func (f *stubFactory) CreateChatModel(_ context.Context, _ providers.Provider, _ string) (einomodel.BaseChatModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chatModel, nil
}

func replyJSON(message string, complete bool) string {
	return fmt.Sprintf(`{"message": %q, "isConversationComplete": %v}`, message, complete)
}

// --- in-memory conversation store ---

type memoryRepo struct {
	conversations map[string]*model.Conversation
	seq           int
	completions   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{conversations: map[string]*model.Conversation{}}
}

func (r *memoryRepo) Create(_ context.Context, topic, provider, modelName string, greeting model.ConversationMessage) (*model.Conversation, error) {
	r.seq++
	conv := &model.Conversation{
		ID:       fmt.Sprintf("conv-%d", r.seq),
		Topic:    topic,
		Messages: []model.ConversationMessage{greeting},
		Provider: provider,
		Model:    modelName,
	}
	r.conversations[conv.ID] = conv
	copied := *conv
	return &copied, nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (*model.Conversation, error) {
	conv, ok := r.conversations[id]
	if !ok {
		return nil, model.ErrConversationNotFound
	}
	copied := *conv
	copied.Messages = append([]model.ConversationMessage{}, conv.Messages...)
	return &copied, nil
}

func (r *memoryRepo) AppendMessages(_ context.Context, id string, messages ...model.ConversationMessage) error {
	conv, ok := r.conversations[id]
	if !ok {
		return model.ErrConversationNotFound
	}
	if conv.IsComplete {
		return model.ErrConversationComplete
	}
	conv.Messages = append(conv.Messages, messages...)
	return nil
}

func (r *memoryRepo) Complete(_ context.Context, id string, score model.ConversationScore) error {
	conv, ok := r.conversations[id]
	if !ok {
		return model.ErrConversationNotFound
	}
	if conv.IsComplete {
		return model.ErrConversationComplete
	}
	conv.IsComplete = true
	conv.Score = &score
	r.completions++
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	delete(r.conversations, id)
	return nil
}

// --- parser ---

func TestParseReply(t *testing.T) {
	reply, err := ParseReply(`{"message": "こんにちは！", "isConversationComplete": false}`)
	require.NoError(t, err)
	assert.Equal(t, "こんにちは！", reply.Message)
	assert.False(t, reply.IsConversationComplete)

	_, err = ParseReply(`{"message": "hi"}`)
	require.Error(t, err)
	assert.Equal(t, errx.KindSchemaViolation, errx.KindOf(err))

	_, err = ParseReply(`{"isConversationComplete": true}`)
	require.Error(t, err)
	assert.Equal(t, errx.KindSchemaViolation, errx.KindOf(err))
}

func TestParseScoreClamping(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want int
	}{
		{name: "in range", raw: 85, want: 85},
		{name: "fractional rounds", raw: 72.6, want: 73},
		{name: "above range", raw: 105.7, want: 100},
		{name: "below range", raw: -3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := fmt.Sprintf(`{"score": %v, "didWell": ["a"], "needsImprovement": ["b"]}`, tt.raw)
			score, err := ParseScore(payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, score.Score)
		})
	}
}

func TestParseScoreMissingFields(t *testing.T) {
	for _, payload := range []string{
		`{"didWell": [], "needsImprovement": []}`,
		`{"score": 50, "needsImprovement": []}`,
		`{"score": 50, "didWell": []}`,
	} {
		_, err := ParseScore(payload)
		require.Error(t, err, "payload %s", payload)
		assert.Equal(t, errx.KindSchemaViolation, errx.KindOf(err))
	}
}

// --- engine ---

func TestGenerateGreeting(t *testing.T) {
	backend := &scriptedChatModel{responses: []string{replyJSON("こんにちは！コーヒーの話をしましょう。", false)}}
	engine := NewEngine(&stubFactory{chatModel: backend})

	greeting, err := engine.GenerateGreeting(context.Background(), "ordering coffee", providers.Google, "gemini-2.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは！コーヒーの話をしましょう。", greeting)

	// system persona + kickoff instruction
	require.Len(t, backend.inputs, 1)
	require.Len(t, backend.inputs[0], 2)
	assert.Equal(t, schema.System, backend.inputs[0][0].Role)
	assert.Contains(t, backend.inputs[0][0].Content, "ordering coffee")
}

func TestReplyCarriesFullHistory(t *testing.T) {
	backend := &scriptedChatModel{responses: []string{replyJSON("いいですね！", false)}}
	engine := NewEngine(&stubFactory{chatModel: backend})

	history := []model.ConversationMessage{
		{Role: model.RoleAssistant, Content: "こんにちは！"},
		{Role: model.RoleUser, Content: "コーヒーをください。"},
		{Role: model.RoleAssistant, Content: "ホットですか？"},
	}
	reply, err := engine.Reply(context.Background(), "ordering coffee", history, "ホットでお願いします。", providers.Google, "gemini-2.5-flash")
	require.NoError(t, err)
	assert.False(t, reply.IsConversationComplete)

	// system + 3 history + new user message, in submission order
	require.Len(t, backend.inputs, 1)
	msgs := backend.inputs[0]
	require.Len(t, msgs, 5)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "こんにちは！", msgs[1].Content)
	assert.Equal(t, schema.User, msgs[2].Role)
	assert.Equal(t, "ホットでお願いします。", msgs[4].Content)
}

func TestReplyFailureIsTyped(t *testing.T) {
	engine := NewEngine(&stubFactory{chatModel: &scriptedChatModel{err: errors.New("timeout")}})

	_, err := engine.Reply(context.Background(), "t", nil, "hi", providers.OpenAI, "gpt-4o")
	require.Error(t, err)
	assert.Equal(t, errx.KindProvider, errx.KindOf(err))
}

// --- service: full session lifecycle ---

func TestServiceConversationLifecycle(t *testing.T) {
	backend := &scriptedChatModel{responses: []string{
		replyJSON("こんにちは！コーヒーを注文しましょう。", false), // greeting
		replyJSON("いらっしゃいませ！何にしますか？", false),
		replyJSON("ホットとアイス、どちらがいいですか？", false),
		replyJSON("かしこまりました。他には？", false),
		replyJSON("ありがとうございました。さようなら！", true),
		`{"score": 82, "didWell": ["Natural ordering phrases"], "needsImprovement": ["Particle accuracy"]}`,
	}}
	store := newMemoryRepo()
	service := NewService(NewEngine(&stubFactory{chatModel: backend}), store)
	ctx := context.Background()

	conv, err := service.Start(ctx, "ordering coffee", providers.Anthropic, "claude-sonnet-4-5-20250929")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, model.RoleAssistant, conv.Messages[0].Role)
	assert.False(t, conv.IsComplete)

	// three ordinary turns
	for i, userMessage := range []string{"コーヒーをください。", "ホットでお願いします。", "以上です。"} {
		turn, err := service.PostMessage(ctx, conv.ID, userMessage)
		require.NoError(t, err, "turn %d", i+1)
		assert.False(t, turn.IsComplete)
		assert.Nil(t, turn.Score)
	}

	// the closing turn completes and scores exactly once
	turn, err := service.PostMessage(ctx, conv.ID, "ありがとう、さようなら！")
	require.NoError(t, err)
	assert.True(t, turn.IsComplete)
	require.NotNil(t, turn.Score)
	assert.Equal(t, 82, turn.Score.Score)

	stored, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsComplete)
	require.NotNil(t, stored.Score)
	// greeting + 4 user/assistant pairs
	assert.Len(t, stored.Messages, 9)

	// 1 greeting + 4 replies + 1 score
	assert.Equal(t, 6, backend.calls)
	assert.Equal(t, 1, store.completions)

	// further turns are rejected without touching the model or the score
	_, err = service.PostMessage(ctx, conv.ID, "もう一度")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConversationComplete)
	assert.Equal(t, 6, backend.calls)
	assert.Equal(t, 1, store.completions)
}

func TestServiceScoreFailureLeavesConversationActive(t *testing.T) {
	backend := &scriptedChatModel{responses: []string{
		replyJSON("こんにちは！", false),
		replyJSON("さようなら！", true),
		"not json at all", // score response breaks the contract
	}}
	store := newMemoryRepo()
	service := NewService(NewEngine(&stubFactory{chatModel: backend}), store)
	ctx := context.Background()

	conv, err := service.Start(ctx, "ordering coffee", providers.Google, "gemini-2.5-flash")
	require.NoError(t, err)

	_, err = service.PostMessage(ctx, conv.ID, "さようなら")
	require.Error(t, err)
	assert.Equal(t, errx.KindSchemaViolation, errx.KindOf(err))

	// the turn's messages persisted, but completion was not committed
	stored, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsComplete)
	assert.Nil(t, stored.Score)
	assert.Len(t, stored.Messages, 3)
	assert.Equal(t, 0, store.completions)
}

func TestServiceReplyFailureMutatesNothing(t *testing.T) {
	backend := &scriptedChatModel{responses: []string{replyJSON("こんにちは！", false)}}
	store := newMemoryRepo()
	service := NewService(NewEngine(&stubFactory{chatModel: backend}), store)
	ctx := context.Background()

	conv, err := service.Start(ctx, "ordering coffee", providers.Google, "gemini-2.5-flash")
	require.NoError(t, err)

	backend.err = errors.New("rate limited")
	_, err = service.PostMessage(ctx, conv.ID, "こんにちは")
	require.Error(t, err)
	assert.Equal(t, errx.KindProvider, errx.KindOf(err))

	stored, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 1)
	assert.False(t, stored.IsComplete)
}

func TestServiceUnknownConversation(t *testing.T) {
	service := NewService(NewEngine(&stubFactory{}), newMemoryRepo())

	_, err := service.PostMessage(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, model.ErrConversationNotFound)
}
