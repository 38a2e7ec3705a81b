package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedSegment is matched by every *MalformedSegmentError.
var ErrMalformedSegment = errors.New("malformed segment")

// MalformedSegmentError identifies the record and field that failed validation.
type MalformedSegmentError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedSegmentError) Error() string {
	return fmt.Sprintf("malformed segment %d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *MalformedSegmentError) Is(target error) bool { return target == ErrMalformedSegment }

var (
	startKeys = []string{"start", "stime"}
	endKeys   = []string{"end", "etime"}
)

// Normalize validates raw records and converts them to segments in arrival
// order. The first invalid record aborts the whole call; nothing is skipped.
func Normalize(records []Record) ([]Segment, error) {
	out := make([]Segment, 0, len(records))
	for i, r := range records {
		seg, err := normalize(i, r)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func normalize(i int, r Record) (Segment, error) {
	if r == nil {
		return Segment{}, &MalformedSegmentError{Index: i, Field: "record", Reason: "is null"}
	}

	rawSpk, ok := r["speaker"]
	if !ok || rawSpk == nil {
		return Segment{}, &MalformedSegmentError{Index: i, Field: "speaker", Reason: "is required"}
	}
	label, ok := rawSpk.(string)
	if !ok {
		return Segment{}, &MalformedSegmentError{Index: i, Field: "speaker", Reason: fmt.Sprintf("must be a string, got %T", rawSpk)}
	}

	start, err := timing(i, r, startKeys)
	if err != nil {
		return Segment{}, err
	}
	end, err := timing(i, r, endKeys)
	if err != nil {
		return Segment{}, err
	}
	if start < 0 {
		return Segment{}, &MalformedSegmentError{Index: i, Field: "start", Reason: "must not be negative"}
	}
	if end <= start {
		return Segment{}, &MalformedSegmentError{Index: i, Field: "end", Reason: fmt.Sprintf("%g is not after start %g", end, start)}
	}

	var text string
	if raw, ok := r["text"]; ok && raw != nil {
		if text, ok = raw.(string); !ok {
			return Segment{}, &MalformedSegmentError{Index: i, Field: "text", Reason: fmt.Sprintf("must be a string, got %T", raw)}
		}
	}

	return Segment{Speaker: ParseSpeaker(label), Start: start, End: end, Text: text}, nil
}

// timing reads the first present key among aliases.
func timing(i int, r Record, aliases []string) (float64, error) {
	for _, k := range aliases {
		raw, ok := r[k]
		if !ok {
			continue
		}
		v, ok := number(raw)
		if !ok {
			return 0, &MalformedSegmentError{Index: i, Field: k, Reason: fmt.Sprintf("must be numeric, got %v", raw)}
		}
		return v, nil
	}
	return 0, &MalformedSegmentError{Index: i, Field: aliases[0], Reason: "is required"}
}

func number(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Sorted returns a copy ordered by start time. Ties keep arrival order.
func Sorted(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	copy(out, segs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Overlap is a pair of same-speaker segments whose spans intersect.
// Indices refer to the input slice.
type Overlap struct {
	First   int     `json:"first"`
	Second  int     `json:"second"`
	Speaker Speaker `json:"speaker"`
	Seconds float64 `json:"seconds"`
}

// SelfOverlaps lists pairs of segments from the same speaker that overlap in
// time. Such pairs are not rejected; callers decide whether to warn.
func SelfOverlaps(segs []Segment) []Overlap {
	idx := make([]int, len(segs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return segs[idx[a]].Start < segs[idx[b]].Start })

	var out []Overlap
	// last segment seen per speaker, by input index
	last := map[Speaker]int{}
	for _, i := range idx {
		s := segs[i]
		if p, ok := last[s.Speaker]; ok {
			prev := segs[p]
			if s.Start < prev.End {
				out = append(out, Overlap{
					First:   p,
					Second:  i,
					Speaker: s.Speaker,
					Seconds: math.Min(prev.End, s.End) - s.Start,
				})
			}
			if s.End <= prev.End {
				continue
			}
		}
		last[s.Speaker] = i
	}
	return out
}
