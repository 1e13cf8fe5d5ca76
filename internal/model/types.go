package model

import "time"

// AttachedParticle is a grammatical marker (は, を, に, …) attached to its
// host word rather than emitted as a separate node.
type AttachedParticle struct {
	Text        string  `json:"text"`
	Reading     *string `json:"reading,omitempty"`
	Description string  `json:"description"`
}

// WordNode is one segmented unit of an analyzed sentence. Particles live in
// AttachedParticle; Modifies references other WordNode IDs in the same
// analysis to form a directed modification graph.
type WordNode struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	Reading          *string           `json:"reading,omitempty"`
	PartOfSpeech     string            `json:"partOfSpeech"`
	Modifies         []string          `json:"modifies,omitempty"`
	Position         int               `json:"position"`
	AttachedParticle *AttachedParticle `json:"attachedParticle,omitempty"`
	IsTopic          bool              `json:"isTopic,omitempty"`
}

// GrammarPoint is one grammar structure identified in a sentence.
type GrammarPoint struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// SentenceAnalysis is the immutable result of analyzing one sentence.
// Explanation and every particle description are sanitized HTML.
type SentenceAnalysis struct {
	DirectTranslation string         `json:"directTranslation"`
	Words             []WordNode     `json:"words"`
	Explanation       string         `json:"explanation"`
	IsFragment        bool           `json:"isFragment"`
	GrammarPoints     []GrammarPoint `json:"grammarPoints"`
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one turn half; immutable once appended.
type ConversationMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationScore is the post-hoc competency evaluation of the user's
// messages. Score is always within [0,100].
type ConversationScore struct {
	Score            int      `json:"score"`
	DidWell          []string `json:"didWell"`
	NeedsImprovement []string `json:"needsImprovement"`
}

// ConversationReply is one assistant turn plus the completion signal that
// drives the Active → Complete transition.
type ConversationReply struct {
	Message                string `json:"message"`
	IsConversationComplete bool   `json:"isConversationComplete"`
}

// Conversation is a practice session. It is mutated only by appending one
// user + one assistant message per turn, and by the one-way completion
// transition that attaches the score.
type Conversation struct {
	ID         string                `json:"id"`
	Topic      string                `json:"topic"`
	Messages   []ConversationMessage `json:"messages"`
	IsComplete bool                  `json:"isComplete"`
	Score      *ConversationScore    `json:"score,omitempty"`
	Provider   string                `json:"provider"`
	Model      string                `json:"model"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}
