package analysis

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/analysis_prompt.txt
var analysisPrompt string

// RenderAnalysisPrompt renders the analysis prompt for one sentence via the
// Eino prompt component.
func RenderAnalysisPrompt(ctx context.Context, sentence string) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.UserMessage(analysisPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Sentence": sentence,
	})
	if err != nil {
		return "", fmt.Errorf("analysis prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("analysis prompt render: empty result")
	}
	return msgs[0].Content, nil
}
