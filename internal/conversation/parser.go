package conversation

import (
	"fmt"
	"math"

	errx "github.com/bunkai-app/server/internal/core/error"
	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/structured"
)

type rawReply struct {
	Message                *string `json:"message"`
	IsConversationComplete *bool   `json:"isConversationComplete"`
}

type rawScore struct {
	Score            *float64  `json:"score"`
	DidWell          *[]string `json:"didWell"`
	NeedsImprovement *[]string `json:"needsImprovement"`
}

// ParseReply validates a raw model response against the reply contract.
func ParseReply(content string) (*model.ConversationReply, error) {
	var raw rawReply
	if err := structured.Decode(content, &raw); err != nil {
		return nil, err
	}
	if raw.Message == nil || *raw.Message == "" {
		return nil, replyViolation("message")
	}
	if raw.IsConversationComplete == nil {
		return nil, replyViolation("isConversationComplete")
	}
	return &model.ConversationReply{
		Message:                *raw.Message,
		IsConversationComplete: *raw.IsConversationComplete,
	}, nil
}

// ParseScore validates a raw model response against the score contract.
// Out-of-range or fractional scores are clamped and rounded, never rejected.
func ParseScore(content string) (*model.ConversationScore, error) {
	var raw rawScore
	if err := structured.Decode(content, &raw); err != nil {
		return nil, err
	}
	if raw.Score == nil || math.IsNaN(*raw.Score) || math.IsInf(*raw.Score, 0) {
		return nil, scoreViolation("score")
	}
	if raw.DidWell == nil {
		return nil, scoreViolation("didWell")
	}
	if raw.NeedsImprovement == nil {
		return nil, scoreViolation("needsImprovement")
	}
	return &model.ConversationScore{
		Score:            clampScore(*raw.Score),
		DidWell:          *raw.DidWell,
		NeedsImprovement: *raw.NeedsImprovement,
	}, nil
}

func clampScore(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

func replyViolation(field string) error {
	return errx.NewSchemaViolation(nil, fmt.Sprintf("reply response missing or invalid field: %s", field))
}

func scoreViolation(field string) error {
	return errx.NewSchemaViolation(nil, fmt.Sprintf("score response missing or invalid field: %s", field))
}
