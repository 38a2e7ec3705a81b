package orchestrator

import (
	"time"

	"github.com/maastricht-university/callscope/compliance"
	"github.com/maastricht-university/callscope/metrics"
	"github.com/maastricht-university/callscope/profanity"
	"github.com/maastricht-university/callscope/transcript"
)

// Report bundles every analysis of one call.
type Report struct {
	ID          string    `json:"id"`
	Source      string    `json:"source,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Segments    int       `json:"segments"`
	Tolerance   float64   `json:"tolerance"`
	Matcher     string    `json:"matcher"`
	// Aggregates
	Durations metrics.Breakdown `json:"durations"`
	Summary   metrics.Summary   `json:"summary"`
	TalkTime  metrics.TalkTime  `json:"talk_time"`
	// Detectors
	Compliance compliance.Verdict `json:"compliance"`
	Profanity  profanity.Flags    `json:"profanity"`
	// Diagnostics
	SelfOverlaps []transcript.Overlap `json:"self_overlaps,omitempty"`
}
