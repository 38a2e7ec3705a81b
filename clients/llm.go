package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultLLMModel    = "gpt-4o-mini"
	defaultRateLimit   = 5.0
	defaultBurst       = 2
	defaultMaxRetries  = 2
	defaultBaseBackoff = 500 * time.Millisecond
)

// --- Chat completions (/v1/chat/completions) ---
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type ChatReq struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}
type ChatResp struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

type LLMConfig struct {
	URL        string
	Model      string
	APIKey     string
	RateLimit  float64 // requests per second
	Burst      int
	MaxRetries int
	// BaseBackoff doubles on every retry.
	BaseBackoff time.Duration
}

// LLM talks to any OpenAI-compatible chat completions endpoint.
type LLM struct {
	http    *HTTP
	cfg     LLMConfig
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

func NewLLM(h *HTTP, cfg LLMConfig, log logrus.FieldLogger) (*LLM, error) {
	if cfg.URL == "" {
		return nil, errors.New("llm url required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultLLMModel
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaultBaseBackoff
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &LLM{
		http:    h,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		log:     log.WithField("component", "llm"),
	}, nil
}

// Complete sends a system and a user prompt and returns the first choice.
// Retryable failures are retried with exponential backoff.
func (l *LLM) Complete(ctx context.Context, system, user string) (string, error) {
	req := ChatReq{
		Model: l.cfg.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := l.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
			l.log.WithError(lastErr).WithField("attempt", attempt).Debug("retrying completion")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		if err := l.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		out, err := l.complete(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !Retryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("llm: max retries exceeded: %w", lastErr)
}

func (l *LLM) complete(ctx context.Context, req ChatReq) (string, error) {
	header := http.Header{}
	if l.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+l.cfg.APIKey)
	}
	var out ChatResp
	if err := l.http.postJSON(ctx, "llm", l.cfg.URL+"/v1/chat/completions", header, req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("llm: empty response")
	}
	return out.Choices[0].Message.Content, nil
}
