package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	cases := map[string]Label{
		"1":     LabelCommunity,
		"0":     LabelNotCommunity,
		"1.0":   LabelCommunity,
		"0.0":   LabelNotCommunity,
		" 1 ":   LabelCommunity,
		"":      LabelAbsent,
		"maybe": LabelAbsent,
		"2":     LabelAbsent,
		"-1":    LabelAbsent,
		"1.00":  LabelAbsent,
		"true":  LabelAbsent,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLabel(in), "input %q", in)
	}
}

func TestLabelRoundTrip(t *testing.T) {
	for _, l := range []Label{LabelAbsent, LabelNotCommunity, LabelCommunity} {
		assert.Equal(t, l, ParseLabel(l.String()))
	}
}

func TestLabelPresent(t *testing.T) {
	assert.True(t, LabelCommunity.Present())
	assert.True(t, LabelNotCommunity.Present())
	assert.False(t, LabelAbsent.Present())
}
