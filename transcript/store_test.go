package transcript

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpeaker(t *testing.T) {
	tests := []struct {
		label string
		want  Speaker
	}{
		{"Agent", Agent},
		{"AGENT_1", Agent},
		{"collections agent", Agent},
		{"Customer", Counterpart},
		{"Borrower", Counterpart},
		{"", Counterpart},
		{"SPEAKER_0", Counterpart},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSpeaker(tt.label))
		})
	}
}

func TestNormalize(t *testing.T) {
	recs := []Record{
		{"speaker": "Agent", "stime": 0.0, "etime": 2.5, "text": "hello"},
		{"speaker": "Customer", "start": json.Number("3"), "end": 4, "text": "hi"},
		{"speaker": "Borrower", "stime": 5.0, "etime": 6.0},
	}
	segs, err := Normalize(recs)
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Equal(t, Segment{Speaker: Agent, Start: 0, End: 2.5, Text: "hello"}, segs[0])
	assert.Equal(t, Segment{Speaker: Counterpart, Start: 3, End: 4, Text: "hi"}, segs[1])
	assert.Equal(t, "", segs[2].Text)
}

func TestNormalizeEmpty(t *testing.T) {
	segs, err := Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name  string
		rec   Record
		field string
	}{
		{"nil record", nil, "record"},
		{"missing speaker", Record{"stime": 0.0, "etime": 1.0}, "speaker"},
		{"non-string speaker", Record{"speaker": 3, "stime": 0.0, "etime": 1.0}, "speaker"},
		{"missing start", Record{"speaker": "Agent", "etime": 1.0}, "start"},
		{"missing end", Record{"speaker": "Agent", "stime": 0.0}, "end"},
		{"string start", Record{"speaker": "Agent", "stime": "0", "etime": 1.0}, "stime"},
		{"bad json number", Record{"speaker": "Agent", "stime": json.Number("x"), "etime": 1.0}, "stime"},
		{"negative start", Record{"speaker": "Agent", "stime": -1.0, "etime": 1.0}, "start"},
		{"end equals start", Record{"speaker": "Agent", "stime": 1.0, "etime": 1.0}, "end"},
		{"end before start", Record{"speaker": "Agent", "stime": 2.0, "etime": 1.0}, "end"},
		{"non-string text", Record{"speaker": "Agent", "stime": 0.0, "etime": 1.0, "text": 7}, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := []Record{{"speaker": "Agent", "stime": 0.0, "etime": 1.0}, tt.rec}
			_, err := Normalize(recs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSegment))

			var mse *MalformedSegmentError
			require.ErrorAs(t, err, &mse)
			assert.Equal(t, 1, mse.Index)
			assert.Equal(t, tt.field, mse.Field)
			assert.Contains(t, err.Error(), "segment 1")
		})
	}
}

func TestSortedIsStableCopy(t *testing.T) {
	in := []Segment{
		{Speaker: Agent, Start: 5, End: 6, Text: "c"},
		{Speaker: Agent, Start: 1, End: 2, Text: "a"},
		{Speaker: Counterpart, Start: 1, End: 3, Text: "b"},
	}
	out := Sorted(in)

	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].Text, out[1].Text, out[2].Text})
	assert.Equal(t, "c", in[0].Text, "input must not be reordered")
}

func TestSelfOverlaps(t *testing.T) {
	segs := []Segment{
		{Speaker: Agent, Start: 0, End: 5},
		{Speaker: Counterpart, Start: 4, End: 6},
		{Speaker: Agent, Start: 3, End: 8},
		{Speaker: Agent, Start: 9, End: 10},
	}
	got := SelfOverlaps(segs)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].First)
	assert.Equal(t, 2, got[0].Second)
	assert.Equal(t, Agent, got[0].Speaker)
	assert.InDelta(t, 2.0, got[0].Seconds, 1e-9)

	assert.Empty(t, SelfOverlaps(nil))
}
