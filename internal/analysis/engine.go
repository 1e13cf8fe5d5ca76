package analysis

import (
	"context"
	"net/http"

	"github.com/cloudwego/eino/schema"

	errx "github.com/bunkai-app/server/internal/core/error"
	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/providers"
	"github.com/bunkai-app/server/internal/sanitize"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// Engine analyzes Japanese sentences through an LLM provider. It is
// stateless per call: no retries, no caching, no persistence.
type Engine struct {
	factory providers.Factory
}

func NewEngine(factory providers.Factory) *Engine {
	return &Engine{factory: factory}
}

// AnalyzeSentence runs one analysis round trip: render the prompt, invoke
// the model, validate the response against the analysis contract and
// sanitize its HTML fields.
func (e *Engine) AnalyzeSentence(ctx context.Context, sentence string, provider providers.Provider, modelName string) (*model.SentenceAnalysis, error) {
	chatModel, err := e.factory.CreateChatModel(ctx, provider, modelName)
	if err != nil {
		return nil, err
	}

	promptText, err := RenderAnalysisPrompt(ctx, sentence)
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
			Msg("analysis model invocation failed")
		return nil, errx.NewProvider(err, "sentence analysis failed")
	}
	if out == nil {
		return nil, errx.NewSchemaViolation(nil, "empty model response")
	}

	analysis, err := ParseAnalysis(out.Content)
	if err != nil {
		return nil, err
	}

	sanitizeAnalysis(analysis)
	return analysis, nil
}

// sanitizeAnalysis cleans every field that may carry model-generated markup.
// Structural fields (ids, positions, flags) are never touched.
func sanitizeAnalysis(a *model.SentenceAnalysis) {
	a.Explanation = sanitize.Explanation(a.Explanation)
	for i := range a.Words {
		if p := a.Words[i].AttachedParticle; p != nil {
			p.Description = sanitize.ParticleDescription(p.Description)
		}
	}
}
