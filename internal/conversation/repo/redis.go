package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errx "github.com/bunkai-app/server/internal/core/error"
	"github.com/bunkai-app/server/internal/model"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// RedisConversationRepository stores each conversation as one JSON document
// so the completion transition commits atomically with its score. The TTL is
// refreshed on every write; practice sessions are short-lived.
type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl, now: time.Now}
}

func (r *RedisConversationRepository) conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

func (r *RedisConversationRepository) Create(ctx context.Context, topic, provider, modelName string, greeting model.ConversationMessage) (*model.Conversation, error) {
	now := r.now()
	conv := &model.Conversation{
		ID:         uuid.NewString(),
		Topic:      topic,
		Messages:   []model.ConversationMessage{greeting},
		IsComplete: false,
		Provider:   provider,
		Model:      modelName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.save(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *RedisConversationRepository) Get(ctx context.Context, id string) (*model.Conversation, error) {
	key := r.conversationKey(id)
	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrConversationNotFound
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation from redis")
		return nil, errx.WrapRedis(err)
	}

	var conv model.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal conversation")
		return nil, fmt.Errorf("unmarshal conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (r *RedisConversationRepository) AppendMessages(ctx context.Context, id string, messages ...model.ConversationMessage) error {
	conv, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if conv.IsComplete {
		return model.ErrConversationComplete
	}

	conv.Messages = append(conv.Messages, messages...)
	conv.UpdatedAt = r.now()
	return r.save(ctx, conv)
}

func (r *RedisConversationRepository) Complete(ctx context.Context, id string, score model.ConversationScore) error {
	conv, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if conv.IsComplete {
		return model.ErrConversationComplete
	}

	conv.IsComplete = true
	conv.Score = &score
	conv.UpdatedAt = r.now()
	return r.save(ctx, conv)
}

func (r *RedisConversationRepository) Delete(ctx context.Context, id string) error {
	key := r.conversationKey(id)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) save(ctx context.Context, conv *model.Conversation) error {
	b, err := json.Marshal(conv)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conv.ID).Msg("failed to marshal conversation")
		return fmt.Errorf("marshal conversation: %w", err)
	}

	key := r.conversationKey(conv.ID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store conversation in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
