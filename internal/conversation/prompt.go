package conversation

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/bunkai-app/server/internal/model"
)

//go:embed template/practice_prompt.txt
var practiceSystemPrompt string

//go:embed template/score_prompt.txt
var scorePrompt string

// greetingKickoff is the synthetic first user turn that asks the model to
// open a brand-new conversation.
const greetingKickoff = "Start the conversation by greeting me and introducing the topic naturally in Japanese. This is the very first message."

// RenderPracticeSystem renders the conversation-partner persona prompt for a
// topic via the Eino prompt component.
func RenderPracticeSystem(ctx context.Context, topic string) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(practiceSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Topic": topic,
	})
	if err != nil {
		return "", fmt.Errorf("practice prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("practice prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// RenderScorePrompt renders the evaluator prompt over the full transcript.
func RenderScorePrompt(ctx context.Context, topic string, messages []model.ConversationMessage) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.UserMessage(scorePrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Topic":      topic,
		"Transcript": formatTranscript(messages),
	})
	if err != nil {
		return "", fmt.Errorf("score prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("score prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func formatTranscript(messages []model.ConversationMessage) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		if msg.Role == model.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Partner: ")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}
