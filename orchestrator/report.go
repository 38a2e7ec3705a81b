package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteText renders the report as a short plain-text summary.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder
	d, s := r.Durations, r.Summary

	fmt.Fprintf(&b, "Report %s\n", r.ID)
	if r.Source != "" {
		fmt.Fprintf(&b, "- Source: %s\n", r.Source)
	}
	fmt.Fprintf(&b, "- Segments: %d (tolerance %.3fs, matcher %s)\n\n", r.Segments, r.Tolerance, r.Matcher)

	b.WriteString("Call quality\n")
	fmt.Fprintf(&b, "- Total duration: %.2fs\n", d.Total.Seconds())
	fmt.Fprintf(&b, "- Silence: %.2fs (%.2f%%)\n", d.Silence.Seconds(), s.SilencePct)
	fmt.Fprintf(&b, "- Speaking: %.2fs (%.2f%%)\n", d.Speaking.Seconds(), s.SpeakingTotalPct)
	fmt.Fprintf(&b, "  - Overtalk: %.2fs (%.2f%% of call, %.2f%% of speaking)\n", d.Overtalk.Seconds(), s.OvertalkPct, s.OvertalkShare)
	if d.OvertalkCapped {
		b.WriteString("  - Overtalk capped at speaking time (overlapping segments counted more than once)\n")
	}
	fmt.Fprintf(&b, "- Agent talk time: %.2fs (%.1f%%)\n", r.TalkTime.Agent.Seconds(), r.TalkTime.AgentShare*100)
	fmt.Fprintf(&b, "- Counterpart talk time: %.2fs (%.1f%%)\n\n", r.TalkTime.Counterpart.Seconds(), r.TalkTime.CounterpartShare*100)

	b.WriteString("Compliance\n")
	fmt.Fprintf(&b, "- Disclosure before verification: %s\n", yesNo(r.Compliance.Violation))
	if f := r.Compliance.First; f != nil {
		fmt.Fprintf(&b, "  - at %.2fs (segment %d): %q\n", f.At, f.Index, f.Text)
	}
	b.WriteString("\nProfanity\n")
	fmt.Fprintf(&b, "- Agent: %s\n", yesNo(r.Profanity.Agent))
	fmt.Fprintf(&b, "- Counterpart: %s\n", yesNo(r.Profanity.Counterpart))

	if n := len(r.SelfOverlaps); n > 0 {
		fmt.Fprintf(&b, "\nWarnings\n- %d same-speaker overlap(s)\n", n)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
