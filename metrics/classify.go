package metrics

import (
	"encoding/json"
	"math"
	"time"

	"github.com/maastricht-university/callscope/transcript"
)

// DefaultTolerance absorbs clock and transcription jitter at segment
// boundaries, in seconds.
const DefaultTolerance = 0.1

// Breakdown splits a call into silence, speaking and overtalk time. All
// values are rounded to the millisecond and Silence+Speaking == Total.
type Breakdown struct {
	Total    time.Duration
	Silence  time.Duration
	Overtalk time.Duration
	Speaking time.Duration
	// OvertalkCapped is set when the pairwise overlap sum exceeded Speaking
	// and Overtalk was clamped to it.
	OvertalkCapped bool
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Total          float64 `json:"total_duration"`
		Silence        float64 `json:"silence_duration"`
		Overtalk       float64 `json:"overtalk_duration"`
		Speaking       float64 `json:"speaking_duration"`
		OvertalkCapped bool    `json:"overtalk_capped,omitempty"`
	}{b.Total.Seconds(), b.Silence.Seconds(), b.Overtalk.Seconds(), b.Speaking.Seconds(), b.OvertalkCapped})
}

// Classify sweeps adjacent pairs of start-sorted segments. A gap larger
// than tolerance is silence, an overlap larger than tolerance is overtalk,
// anything within the band is contiguous speech. Boundaries are compared at
// millisecond precision and a negative tolerance is treated as zero.
//
// Overlaps are summed per adjacent pair, not as a union of intervals, so
// three or more simultaneous segments can count the same time twice.
func Classify(segs []transcript.Segment, tolerance float64) Breakdown {
	if len(segs) == 0 {
		return Breakdown{}
	}
	sorted := transcript.Sorted(segs)
	tol := round(math.Max(tolerance, 0))

	first, last := sorted[0].Start, sorted[0].End
	var silence, overtalk float64
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		last = math.Max(last, curr.End)

		gap := curr.Start - prev.End
		switch {
		case round(gap) < -tol:
			overtalk += prev.End - curr.Start
		case round(gap) > tol:
			silence += gap
		}
	}

	b := Breakdown{
		Total:    round(last - first),
		Silence:  round(silence),
		Overtalk: round(overtalk),
	}
	b.Speaking = b.Total - b.Silence
	if b.Overtalk > b.Speaking {
		b.Overtalk = b.Speaking
		b.OvertalkCapped = true
	}
	return b
}

// round converts seconds to a Duration with millisecond precision.
func round(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1000)) * time.Millisecond
}
