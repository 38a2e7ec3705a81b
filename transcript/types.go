package transcript

import "strings"

type Speaker int

const (
	Counterpart Speaker = iota
	Agent
)

func (s Speaker) String() string {
	if s == Agent {
		return "agent"
	}
	return "counterpart"
}

func (s Speaker) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseSpeaker maps a free-form label onto the two known parties.
// Any label containing "agent" (case-insensitive) is the agent; everything
// else, including an empty label, is the counterpart.
func ParseSpeaker(label string) Speaker {
	if strings.Contains(strings.ToLower(label), "agent") {
		return Agent
	}
	return Counterpart
}

// Segment is one contiguous span of a single speaker's speech.
type Segment struct {
	Speaker Speaker `json:"speaker"`
	Start   float64 `json:"start"` // sec
	End     float64 `json:"end"`   // sec
	Text    string  `json:"text"`
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// Record is a raw, untyped segment as decoded from JSON or YAML.
type Record map[string]any
