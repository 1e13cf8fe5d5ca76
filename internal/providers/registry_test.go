package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/bunkai-app/server/internal/core/error"
)

func TestParse(t *testing.T) {
	for _, id := range []string{"anthropic", "openai", "google", "xai", "openrouter", "cerebras", "fireworks"} {
		p, ok := Parse(id)
		assert.True(t, ok, id)
		assert.Equal(t, Provider(id), p)
	}

	_, ok := Parse("mistral")
	assert.False(t, ok)
	_, ok = Parse("")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	identity, ok := Lookup(Anthropic)
	require.True(t, ok)
	assert.Equal(t, "Anthropic", identity.DisplayName)
	assert.Equal(t, "ANTHROPIC_API_KEY", identity.CredentialEnvKey)

	identity, ok = Lookup(Fireworks)
	require.True(t, ok)
	assert.Equal(t, "FIREWORKS_API_KEY", identity.CredentialEnvKey)
}

func TestCreateChatModelMissingCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	registry := NewRegistry(Config{})

	_, err := registry.CreateChatModel(context.Background(), OpenAI, "gpt-4o")
	require.Error(t, err)
	// a deployment fault, distinct from a remote API failure
	assert.Equal(t, errx.KindConfiguration, errx.KindOf(err))
	assert.Contains(t, err.Error(), "OpenAI")
}

func TestCreateChatModelUnknownProvider(t *testing.T) {
	registry := NewRegistry(Config{})

	_, err := registry.CreateChatModel(context.Background(), Provider("mistral"), "mistral-large")
	require.Error(t, err)
	assert.Equal(t, errx.KindValidation, errx.KindOf(err))
}

func TestCreateChatModelReadsCredentialAtCallTime(t *testing.T) {
	t.Setenv("CEREBRAS_API_KEY", "")
	registry := NewRegistry(Config{MaxTokens: 4096, Timeout: time.Minute})

	_, err := registry.CreateChatModel(context.Background(), Cerebras, "llama-3.3-70b")
	require.Error(t, err)
	assert.Equal(t, errx.KindConfiguration, errx.KindOf(err))

	// rotation takes effect without reconstructing the registry
	t.Setenv("CEREBRAS_API_KEY", "test-key")
	handle, err := registry.CreateChatModel(context.Background(), Cerebras, "llama-3.3-70b")
	require.NoError(t, err)
	assert.NotNil(t, handle)
}

func TestCreateChatModelConstructsPerCall(t *testing.T) {
	t.Setenv("XAI_API_KEY", "test-key")
	registry := NewRegistry(Config{})

	first, err := registry.CreateChatModel(context.Background(), XAI, "grok-4")
	require.NoError(t, err)
	second, err := registry.CreateChatModel(context.Background(), XAI, "grok-4")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
