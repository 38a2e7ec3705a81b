package metrics

import (
	"encoding/json"
	"time"

	"github.com/maastricht-university/callscope/transcript"
)

// Summary expresses a Breakdown as percentages of the call.
type Summary struct {
	SilencePct       float64 `json:"silence_pct"`
	SoloSpeakingPct  float64 `json:"solo_speaking_pct"`
	OvertalkPct      float64 `json:"overtalk_pct"`
	OvertalkShare    float64 `json:"overtalk_share_of_speaking_pct"`
	SpeakingTotalPct float64 `json:"speaking_pct"`
}

func Summarize(b Breakdown) Summary {
	if b.Total <= 0 {
		return Summary{}
	}
	solo := b.Speaking - b.Overtalk
	s := Summary{
		SilencePct:      pct(b.Silence, b.Total),
		SoloSpeakingPct: pct(solo, b.Total),
		OvertalkPct:     pct(b.Overtalk, b.Total),
	}
	s.SpeakingTotalPct = s.SoloSpeakingPct + s.OvertalkPct
	if b.Speaking > 0 {
		s.OvertalkShare = pct(b.Overtalk, b.Speaking)
	}
	return s
}

func pct(part, whole time.Duration) float64 {
	return float64(part) / float64(whole) * 100
}

// TalkTime is the summed segment length per speaker.
type TalkTime struct {
	Agent       time.Duration
	Counterpart time.Duration
	// share of summed talk time per speaker, 0..1
	AgentShare       float64
	CounterpartShare float64
}

func (t TalkTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"agent_seconds":       t.Agent.Seconds(),
		"counterpart_seconds": t.Counterpart.Seconds(),
		"agent_share":         t.AgentShare,
		"counterpart_share":   t.CounterpartShare,
	})
}

func SpeakerTalkTime(segs []transcript.Segment) TalkTime {
	var agent, other float64
	for _, s := range segs {
		if s.Speaker == transcript.Agent {
			agent += s.Duration()
		} else {
			other += s.Duration()
		}
	}
	t := TalkTime{Agent: round(agent), Counterpart: round(other)}
	if total := agent + other; total > 0 {
		t.AgentShare = agent / total
		t.CounterpartShare = other / total
	}
	return t
}
