// Package structured turns raw model text into validated contract values.
// Models are instructed to answer with a single JSON object; this package
// handles the deserialize half (fence stripping, size guards, JSON decode)
// while each engine's parser owns field-level validation.
package structured

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	errx "github.com/bunkai-app/server/internal/core/error"
	logx "github.com/bunkai-app/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 256 * 1024 // 256KB
)

// Decode extracts the outermost JSON object from a model response and
// unmarshals it into v. Any failure is a schema violation: the model did not
// honor the output contract.
func Decode(content string, v any) (err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "structured").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("structured decode panic"), errx.KindSchemaViolation, http.StatusInternalServerError, errx.SystemErrorMessage)
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "structured").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("model response exceeds size limit")
		return errx.NewSchemaViolation(nil, "model response too large")
	}
	if !utf8.ValidString(content) {
		return errx.NewSchemaViolation(nil, "model response is not valid UTF-8")
	}

	payload, ok := extractObject(content)
	if !ok {
		return errx.NewSchemaViolation(nil, "model response contains no JSON object")
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return errx.NewSchemaViolation(err, "model response is not valid JSON")
	}
	return nil
}

// extractObject locates the outermost {...} in the response, tolerating
// markdown code fences and prose around the object.
func extractObject(content string) (string, bool) {
	s := strings.TrimSpace(content)

	// strip a leading ``` or ```json fence and its closing fence
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
