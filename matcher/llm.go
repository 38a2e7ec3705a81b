package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Completer is the slice of an LLM client the classifier needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

var categoryPrompts = map[Category]string{
	Profanity: "Decide whether the utterance contains profanity, obscenities, " +
		"obfuscated swear words or insulting phrases.",
	Verification: "Decide whether the utterance is the agent asking for or performing " +
		"identity verification, such as date of birth, address, SSN or a security question.",
	SensitiveInfo: "Decide whether the utterance discloses sensitive account information, " +
		"such as a balance, an amount owed, an account or card number, a loan or interest figure, " +
		"or personal contact details.",
}

const systemPrompt = "You are a compliance analyst reviewing single utterances from a debt collection call. " +
	"Respond with ONLY a JSON object of the form {\"match\": true} or {\"match\": false}. " +
	"No markdown, no explanations."

// LLMClassifier asks a language model whether an utterance falls into a
// category. It is not deterministic; wrap it in Memoize for a stable answer
// within one analysis.
type LLMClassifier struct {
	c Completer
}

func NewLLMClassifier(c Completer) *LLMClassifier { return &LLMClassifier{c: c} }

func (l *LLMClassifier) Classify(ctx context.Context, text string, c Category) (bool, error) {
	task, ok := categoryPrompts[c]
	if !ok {
		return false, fmt.Errorf("unknown category %s", c)
	}
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	user := task + "\n\nUtterance:\n" + strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	out, err := l.c.Complete(ctx, systemPrompt, user)
	if err != nil {
		return false, err
	}

	var verdict struct {
		Match *bool `json:"match"`
	}
	if err := json.Unmarshal([]byte(extractJSON(out)), &verdict); err != nil {
		return false, fmt.Errorf("classifier decode: %w", err)
	}
	if verdict.Match == nil {
		return false, fmt.Errorf("classifier decode: missing \"match\" in %q", out)
	}
	return *verdict.Match, nil
}

// extractJSON pulls a JSON object out of model output that may be wrapped in
// markdown fences or prose.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
