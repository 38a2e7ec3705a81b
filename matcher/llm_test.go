package matcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply string
	err   error
	user  string
}

func (s *stubCompleter) Complete(_ context.Context, _, user string) (string, error) {
	s.user = user
	return s.reply, s.err
}

func TestLLMClassifier(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    bool
		wantErr bool
	}{
		{"plain true", `{"match": true}`, true, false},
		{"plain false", `{"match": false}`, false, false},
		{"fenced", "```json\n{\"match\": true}\n```", true, false},
		{"with prose", `Sure. {"match": true} Hope that helps.`, true, false},
		{"missing field", `{"verdict": true}`, false, true},
		{"not json", `yes`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &stubCompleter{reply: tt.reply}
			got, err := NewLLMClassifier(sc).Classify(context.Background(), "your balance is $50", SensitiveInfo)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasSuffix(sc.user, "your balance is $50"))
		})
	}
}

func TestLLMClassifierShortCircuits(t *testing.T) {
	sc := &stubCompleter{err: errors.New("should not be called")}
	c := NewLLMClassifier(sc)

	got, err := c.Classify(context.Background(), "   ", Profanity)
	require.NoError(t, err)
	assert.False(t, got)

	_, err = c.Classify(context.Background(), "text", Category(42))
	assert.Error(t, err)
}

func TestLLMClassifierPropagatesErrors(t *testing.T) {
	sc := &stubCompleter{err: errors.New("timeout")}
	_, err := NewLLMClassifier(sc).Classify(context.Background(), "hi", Verification)
	assert.EqualError(t, err, "timeout")
}
