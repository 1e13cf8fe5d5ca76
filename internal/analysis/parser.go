package analysis

import (
	"fmt"
	"strings"

	errx "github.com/bunkai-app/server/internal/core/error"
	"github.com/bunkai-app/server/internal/model"
	"github.com/bunkai-app/server/internal/structured"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// Loosely-typed intermediate forms. Pointer fields distinguish an absent key
// from a zero value so contract validation can reject omissions.
type rawParticle struct {
	Text        *string `json:"text"`
	Reading     *string `json:"reading"`
	Description *string `json:"description"`
}

type rawWord struct {
	ID               *string      `json:"id"`
	Text             *string      `json:"text"`
	Reading          *string      `json:"reading"`
	PartOfSpeech     *string      `json:"partOfSpeech"`
	Modifies         []string     `json:"modifies"`
	Position         *float64     `json:"position"`
	AttachedParticle *rawParticle `json:"attachedParticle"`
	IsTopic          *bool        `json:"isTopic"`
}

type rawGrammarPoint struct {
	Title       *string `json:"title"`
	Explanation *string `json:"explanation"`
}

type rawAnalysis struct {
	DirectTranslation *string            `json:"directTranslation"`
	Words             *[]rawWord         `json:"words"`
	Explanation       *string            `json:"explanation"`
	IsFragment        *bool              `json:"isFragment"`
	GrammarPoints     *[]rawGrammarPoint `json:"grammarPoints"`
}

// ParseAnalysis validates a raw model response against the analysis contract
// and builds the domain value. Dangling modification references are dropped,
// not fatal; missing required fields are schema violations.
func ParseAnalysis(content string) (*model.SentenceAnalysis, error) {
	var raw rawAnalysis
	if err := structured.Decode(content, &raw); err != nil {
		return nil, err
	}

	if raw.DirectTranslation == nil {
		return nil, violation("directTranslation")
	}
	if raw.Explanation == nil {
		return nil, violation("explanation")
	}
	if raw.IsFragment == nil {
		return nil, violation("isFragment")
	}
	if raw.Words == nil {
		return nil, violation("words")
	}
	if raw.GrammarPoints == nil {
		return nil, violation("grammarPoints")
	}

	words := make([]model.WordNode, 0, len(*raw.Words))
	for i, w := range *raw.Words {
		word, err := parseWord(i, w)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	pruneDanglingModifies(words)

	points := make([]model.GrammarPoint, 0, len(*raw.GrammarPoints))
	for i, gp := range *raw.GrammarPoints {
		if gp.Title == nil || gp.Explanation == nil {
			return nil, violation(fmt.Sprintf("grammarPoints[%d]", i))
		}
		points = append(points, model.GrammarPoint{
			Title:       strings.TrimSpace(*gp.Title),
			Explanation: strings.TrimSpace(*gp.Explanation),
		})
	}

	return &model.SentenceAnalysis{
		DirectTranslation: *raw.DirectTranslation,
		Words:             words,
		Explanation:       *raw.Explanation,
		IsFragment:        *raw.IsFragment,
		GrammarPoints:     points,
	}, nil
}

func parseWord(i int, w rawWord) (model.WordNode, error) {
	if w.ID == nil || *w.ID == "" {
		return model.WordNode{}, violation(fmt.Sprintf("words[%d].id", i))
	}
	if w.Text == nil {
		return model.WordNode{}, violation(fmt.Sprintf("words[%d].text", i))
	}
	if w.PartOfSpeech == nil {
		return model.WordNode{}, violation(fmt.Sprintf("words[%d].partOfSpeech", i))
	}
	if w.Position == nil || *w.Position < 0 {
		return model.WordNode{}, violation(fmt.Sprintf("words[%d].position", i))
	}

	word := model.WordNode{
		ID:           *w.ID,
		Text:         *w.Text,
		Reading:      w.Reading,
		PartOfSpeech: *w.PartOfSpeech,
		Modifies:     w.Modifies,
		// fractional positions are truncated rather than rejected
		Position: int(*w.Position),
	}

	if w.AttachedParticle != nil {
		p := w.AttachedParticle
		if p.Text == nil || p.Description == nil {
			return model.WordNode{}, violation(fmt.Sprintf("words[%d].attachedParticle", i))
		}
		word.AttachedParticle = &model.AttachedParticle{
			Text:        *p.Text,
			Reading:     p.Reading,
			Description: *p.Description,
		}
	}

	if w.IsTopic != nil && *w.IsTopic {
		word.IsTopic = true
		// topics frame the sentence; they are never modification sources
		word.Modifies = nil
	}

	return word, nil
}

// pruneDanglingModifies drops modification references to ids that are not
// present in the analysis. Data-quality concern, not a hard failure.
func pruneDanglingModifies(words []model.WordNode) {
	ids := make(map[string]struct{}, len(words))
	for _, w := range words {
		ids[w.ID] = struct{}{}
	}

	for i := range words {
		if len(words[i].Modifies) == 0 {
			continue
		}
		kept := words[i].Modifies[:0]
		for _, target := range words[i].Modifies {
			if _, ok := ids[target]; ok {
				kept = append(kept, target)
				continue
			}
			logx.Warn().
				Str("word_id", words[i].ID).
				Str("target_id", target).
				Msg("dropping dangling modification reference")
		}
		words[i].Modifies = kept
	}
}

func violation(field string) error {
	return errx.NewSchemaViolation(nil, fmt.Sprintf("analysis response missing or invalid field: %s", field))
}
