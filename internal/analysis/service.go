package analysis

import (
	"context"

	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/providers"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// Service fronts the Engine with the response cache. Identical
// (provider, model, sentence) requests within the TTL hit the provider once.
type Service struct {
	engine *Engine
	cache  *Cache
}

func NewService(engine *Engine, cache *Cache) *Service {
	return &Service{engine: engine, cache: cache}
}

// Analyze returns the analysis for a sentence, serving from cache when
// possible. The second return value reports whether the result was cached.
// Only successful analyses are written back to the cache.
func (s *Service) Analyze(ctx context.Context, sentence string, provider providers.Provider, modelName string) (*model.SentenceAnalysis, bool, error) {
	key := CacheKey(string(provider), modelName, sentence)
	if cached, ok := s.cache.Get(key); ok {
		logx.Debug().Str("provider", string(provider)).Str("model", modelName).Msg("analysis served from cache")
		return cached, true, nil
	}

	analysis, err := s.engine.AnalyzeSentence(ctx, sentence, provider, modelName)
	if err != nil {
		return nil, false, err
	}

	s.cache.Set(key, analysis)
	return analysis, false, nil
}
