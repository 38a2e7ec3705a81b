package profanity

import (
	"context"

	"github.com/maastricht-university/callscope/matcher"
	"github.com/maastricht-university/callscope/transcript"
)

// Flags records whether each party used profanity at least once.
type Flags struct {
	Agent       bool `json:"agent_profanity"`
	Counterpart bool `json:"counterpart_profanity"`
}

// Detect checks every segment against the profanity category and stops as
// soon as both parties are flagged.
func Detect(ctx context.Context, segs []transcript.Segment, m matcher.Matcher) Flags {
	var f Flags
	for _, s := range segs {
		if f.Agent && f.Counterpart {
			break
		}
		switch s.Speaker {
		case transcript.Agent:
			if !f.Agent && m.Matches(ctx, s.Text, matcher.Profanity) {
				f.Agent = true
			}
		default:
			if !f.Counterpart && m.Matches(ctx, s.Text, matcher.Profanity) {
				f.Counterpart = true
			}
		}
	}
	return f
}
