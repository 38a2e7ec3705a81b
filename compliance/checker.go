// Package compliance checks that the agent verifies the counterpart's
// identity before disclosing account-specific information.
package compliance

import (
	"context"
	"sort"

	"github.com/maastricht-university/callscope/matcher"
	"github.com/maastricht-university/callscope/transcript"
)

type State int

const (
	Unverified State = iota
	Verified
	Violated
)

func (s State) String() string {
	switch s {
	case Verified:
		return "verified"
	case Violated:
		return "violated"
	default:
		return "unverified"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Verdict is the outcome of one disclosure-ordering scan.
type Verdict struct {
	Violation bool        `json:"violation"`
	State     State       `json:"state"`
	First     *Disclosure `json:"first_violation,omitempty"`
}

// Disclosure locates an unguarded disclosure. Index refers to the caller's
// segment slice, not the sorted order.
type Disclosure struct {
	Index int     `json:"index"`
	At    float64 `json:"at"`
	Text  string  `json:"text"`
}

// Check scans agent segments in start order. Verification, once seen,
// lasts for the rest of the call; a sensitive disclosure while still
// unverified is a violation and ends the scan. An utterance matching both
// categories counts as verification.
func Check(ctx context.Context, segs []transcript.Segment, m matcher.Matcher) Verdict {
	order := make([]int, len(segs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return segs[order[a]].Start < segs[order[b]].Start })

	v := Verdict{State: Unverified}
	for _, i := range order {
		s := segs[i]
		if s.Speaker != transcript.Agent {
			continue
		}
		if m.Matches(ctx, s.Text, matcher.Verification) {
			v.State = Verified
			continue
		}
		if v.State == Unverified && m.Matches(ctx, s.Text, matcher.SensitiveInfo) {
			v.State = Violated
			v.Violation = true
			v.First = &Disclosure{Index: i, At: s.Start, Text: s.Text}
			return v
		}
	}
	return v
}

// CheckStrict runs Check against a Strict matcher and returns its error, if
// any, instead of a verdict built on degraded answers.
func CheckStrict(ctx context.Context, segs []transcript.Segment, m *matcher.Strict) (Verdict, error) {
	v := Check(ctx, segs, m)
	if err := m.Err(); err != nil {
		return Verdict{}, err
	}
	return v, nil
}
