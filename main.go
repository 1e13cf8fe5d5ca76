package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/bunkai-app/server/internal/analysis"
	"github.com/bunkai-app/server/internal/conversation"
	"github.com/bunkai-app/server/internal/conversation/repo"
	"github.com/bunkai-app/server/internal/core"
	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/providers"
	"github.com/bunkai-app/server/internal/validation"
	logx "github.com/bunkai-app/server/pkg/logger"
	pkgredis "github.com/bunkai-app/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the demo run, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// Engines
	Model        model.ChatModelConfig
	Cache        model.CacheConfig
	Conversation model.ConversationConfig

	// Demo inputs
	Demo struct {
		Provider string `envconfig:"DEMO_PROVIDER" default:"google"`
		Model    string `envconfig:"DEMO_MODEL" default:"gemini-2.5-flash"`
		Sentence string `envconfig:"DEMO_SENTENCE" default:"私は美しい花を見ました。"`
		Topic    string `envconfig:"DEMO_TOPIC" default:"ordering coffee"`
	}
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	modelTimeout, err := time.ParseDuration(cfg.Model.Timeout)
	if err != nil {
		log.Fatalf("Invalid MODEL_TIMEOUT '%s': %v", cfg.Model.Timeout, err)
	}
	cacheTTL, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		log.Fatalf("Invalid ANALYSIS_CACHE_TTL '%s': %v", cfg.Cache.TTL, err)
	}
	conversationTTL, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", cfg.Conversation.TTL, err)
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	provider, ok := providers.Parse(cfg.Demo.Provider)
	if !ok {
		log.Fatalf("Unsupported DEMO_PROVIDER '%s'", cfg.Demo.Provider)
	}
	if !validation.IsValidModelID(cfg.Demo.Model) {
		log.Fatalf("Invalid DEMO_MODEL '%s'", cfg.Demo.Model)
	}

	registry := providers.NewRegistry(providers.Config{
		MaxTokens: cfg.Model.MaxTokens,
		Timeout:   modelTimeout,
	})

	analyzer := analysis.NewService(
		analysis.NewEngine(registry),
		analysis.NewCache(cacheTTL, cfg.Cache.SweepThreshold),
	)
	practice := conversation.NewService(
		conversation.NewEngine(registry),
		repo.NewRedisConversationRepository(rdb, conversationTTL),
	)

	// ====================================================
	// Sentence analysis, twice: the second call must hit the cache.
	fmt.Printf("Analyzing: %q via %s/%s\n", cfg.Demo.Sentence, provider, cfg.Demo.Model)
	for i := 1; i <= 2; i++ {
		result, cached, err := analyzer.Analyze(ctx, cfg.Demo.Sentence, provider, cfg.Demo.Model)
		if err != nil {
			log.Fatalf("Analysis %d failed: %v", i, err)
		}
		fmt.Printf("Run %d (cached=%v): %s\n", i, cached, result.DirectTranslation)
		for _, word := range result.Words {
			topic := ""
			if word.IsTopic {
				topic = " [topic]"
			}
			fmt.Printf("  %d. %s (%s)%s\n", word.Position, word.Text, word.PartOfSpeech, topic)
		}
	}

	// ====================================================
	// Conversation practice: greeting, a few turns, score on completion.
	conv, err := practice.Start(ctx, cfg.Demo.Topic, provider, cfg.Demo.Model)
	if err != nil {
		log.Fatalf("Failed to start conversation: %v", err)
	}
	fmt.Printf("\nConversation %s on %q\n", conv.ID, conv.Topic)
	fmt.Printf("partner: %s\n", conv.Messages[0].Content)

	turns := []string{
		"こんにちは！コーヒーをお願いします。",
		"ホットでお願いします。ミルクも入れてください。",
		"ありがとうございます。さようなら！",
	}
	for _, userMessage := range turns {
		fmt.Printf("user: %s\n", userMessage)
		turn, err := practice.PostMessage(ctx, conv.ID, userMessage)
		if err != nil {
			log.Fatalf("Turn failed: %v", err)
		}
		fmt.Printf("partner: %s\n", turn.Reply.Content)
		if turn.IsComplete {
			fmt.Printf("\nConversation complete. Score: %d/100\n", turn.Score.Score)
			for _, s := range turn.Score.DidWell {
				fmt.Printf("  + %s\n", s)
			}
			for _, s := range turn.Score.NeedsImprovement {
				fmt.Printf("  - %s\n", s)
			}
			break
		}
	}
}
