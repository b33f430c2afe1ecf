package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchLabel(t *testing.T) {
	candidates := []string{"P07 E.coli", "P08 E.coli", "P17 S.aureus"}

	tests := []struct {
		name     string
		text     string
		want     string
		distance int
		ok       bool
	}{
		{"exact", "P08 E.coli", "P08 E.coli", 0, true},
		{"case and spacing", "p07  e.coli", "P07 E.coli", 0, true},
		{"one misread", "P08 E.col1", "P08 E.coli", 1, true},
		{"unrelated", "XYZ", "P07 E.coli", 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := MatchLabel(tt.text, candidates, 0.6)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, m.Label)
			assert.Equal(t, tt.distance, m.Distance)
		})
	}
}

func TestMatchLabel_NoCandidates(t *testing.T) {
	_, ok := MatchLabel("P07", nil, 0)
	assert.False(t, ok)
}

func TestMatchLabel_Similarity(t *testing.T) {
	m, ok := MatchLabel("ABCD", []string{"ABCE"}, 0)
	assert.True(t, ok)
	assert.InDelta(t, 0.75, m.Similarity, 1e-9)

	m, ok = MatchLabel("", []string{""}, 1)
	assert.True(t, ok)
	assert.Equal(t, 1.0, m.Similarity)
}
