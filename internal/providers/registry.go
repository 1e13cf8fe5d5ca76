package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	errx "github.com/bunkai-app/server/internal/core/error"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// Provider identifies one of the supported LLM vendors.
type Provider string

const (
	Anthropic  Provider = "anthropic"
	OpenAI     Provider = "openai"
	Google     Provider = "google"
	XAI        Provider = "xai"
	OpenRouter Provider = "openrouter"
	Cerebras   Provider = "cerebras"
	Fireworks  Provider = "fireworks"
)

// Identity holds the static connection parameters for one provider.
type Identity struct {
	ID               Provider
	DisplayName      string
	CredentialEnvKey string
}

var identities = map[Provider]Identity{
	Anthropic:  {ID: Anthropic, DisplayName: "Anthropic", CredentialEnvKey: "ANTHROPIC_API_KEY"},
	OpenAI:     {ID: OpenAI, DisplayName: "OpenAI", CredentialEnvKey: "OPENAI_API_KEY"},
	Google:     {ID: Google, DisplayName: "Google Gemini", CredentialEnvKey: "GOOGLE_API_KEY"},
	XAI:        {ID: XAI, DisplayName: "xAI", CredentialEnvKey: "XAI_API_KEY"},
	OpenRouter: {ID: OpenRouter, DisplayName: "OpenRouter", CredentialEnvKey: "OPENROUTER_API_KEY"},
	Cerebras:   {ID: Cerebras, DisplayName: "Cerebras", CredentialEnvKey: "CEREBRAS_API_KEY"},
	Fireworks:  {ID: Fireworks, DisplayName: "Fireworks AI", CredentialEnvKey: "FIREWORKS_API_KEY"},
}

// Base URLs for the OpenAI-compatible providers.
const (
	xaiBaseURL        = "https://api.x.ai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	cerebrasBaseURL   = "https://api.cerebras.ai/v1"
	fireworksBaseURL  = "https://api.fireworks.ai/inference/v1"
)

// Parse normalises a caller-supplied provider string.
func Parse(s string) (Provider, bool) {
	p := Provider(s)
	_, ok := identities[p]
	return p, ok
}

// Lookup returns the static identity for a provider.
func Lookup(p Provider) (Identity, bool) {
	id, ok := identities[p]
	return id, ok
}

// Factory constructs a chat-model handle for a provider + model-name pair.
// Engines depend on this interface so tests can inject fakes.
type Factory interface {
	CreateChatModel(ctx context.Context, provider Provider, modelName string) (einomodel.BaseChatModel, error)
}

// Config holds the knobs shared by every constructed handle.
type Config struct {
	MaxTokens int
	Timeout   time.Duration
}

// Registry builds provider-specific chat-model handles. A new handle is
// constructed per call; the credential is read from the environment at call
// time so rotation takes effect without a restart.
type Registry struct {
	maxTokens int
	timeout   time.Duration
}

func NewRegistry(cfg Config) *Registry {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Registry{maxTokens: maxTokens, timeout: timeout}
}

// CreateChatModel returns a handle for the given provider and model name.
// Model names pass through unvalidated; unknown names fail at the remote API.
func (r *Registry) CreateChatModel(ctx context.Context, provider Provider, modelName string) (einomodel.BaseChatModel, error) {
	identity, ok := identities[provider]
	if !ok {
		return nil, errx.NewValidation(nil, fmt.Sprintf("unsupported provider: %s", provider))
	}

	apiKey := os.Getenv(identity.CredentialEnvKey)
	if apiKey == "" {
		return nil, errx.NewConfiguration(nil, fmt.Sprintf("API key not properly set for %s", identity.DisplayName))
	}

	switch provider {
	case Anthropic:
		return r.newClaudeModel(ctx, apiKey, modelName)
	case Google:
		return r.newGeminiModel(ctx, apiKey, modelName)
	case OpenAI:
		return r.newOpenAICompatModel(ctx, apiKey, modelName, "")
	case XAI:
		return r.newOpenAICompatModel(ctx, apiKey, modelName, xaiBaseURL)
	case OpenRouter:
		return r.newOpenAICompatModel(ctx, apiKey, modelName, openRouterBaseURL)
	case Cerebras:
		return r.newOpenAICompatModel(ctx, apiKey, modelName, cerebrasBaseURL)
	case Fireworks:
		return r.newOpenAICompatModel(ctx, apiKey, modelName, fireworksBaseURL)
	default:
		return nil, errx.NewValidation(nil, fmt.Sprintf("unsupported provider: %s", provider))
	}
}

func (r *Registry) newClaudeModel(ctx context.Context, apiKey, modelName string) (einomodel.BaseChatModel, error) {
	cm, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", modelName).Msg("Error creating Anthropic model")
		return nil, errx.NewProvider(err, "error creating Anthropic model")
	}
	return cm, nil
}

func (r *Registry) newGeminiModel(ctx context.Context, apiKey, modelName string) (einomodel.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: r.timeout},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, errx.NewProvider(err, "error creating Gemini client")
	}

	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:    client,
		Model:     modelName,
		MaxTokens: &r.maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", modelName).Msg("Error creating Gemini model")
		return nil, errx.NewProvider(err, "error creating Gemini model")
	}
	return cm, nil
}

func (r *Registry) newOpenAICompatModel(ctx context.Context, apiKey, modelName, baseURL string) (einomodel.BaseChatModel, error) {
	maxTokens := r.maxTokens
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:    apiKey,
		BaseURL:   baseURL,
		Model:     modelName,
		MaxTokens: &maxTokens,
		Timeout:   r.timeout,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", modelName).Str("base_url", baseURL).Msg("Error creating OpenAI-compatible model")
		return nil, errx.NewProvider(err, "error creating chat model")
	}
	return cm, nil
}
