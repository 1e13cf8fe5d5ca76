package model

// ================ Config ================
type ChatModelConfig struct {
	MaxTokens int    `envconfig:"MODEL_MAX_TOKENS" default:"4096"`
	Timeout   string `envconfig:"MODEL_TIMEOUT" default:"60s"`
}

type CacheConfig struct {
	TTL            string `envconfig:"ANALYSIS_CACHE_TTL" default:"1h"`
	SweepThreshold int    `envconfig:"ANALYSIS_CACHE_SWEEP_THRESHOLD" default:"100"`
}

type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"24h"`
}
