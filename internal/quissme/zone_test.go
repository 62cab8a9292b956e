package quissme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyZoneWideScale(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		a, b int
		want Zone
	}{
		{0, 0, ZoneFlow},
		{5, 5, ZoneFlow},
		{0, 3, ZoneFlow}, // similarity exactly 0.7
		{0, 4, ZoneSpark},
		{0, 6, ZoneSpark},
		{0, 7, ZoneTalk}, // similarity exactly 0.3
		{10, 0, ZoneTalk},
	}
	for _, tt := range tests {
		got := ClassifyZone(c, "wide", answer("wide", PartnerA, tt.a), answer("wide", PartnerB, tt.b))
		assert.Equal(t, tt.want, got, "options %d/%d", tt.a, tt.b)
	}
}

func TestClassifyZoneFiveOptions(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		a, b int
		want Zone
	}{
		{2, 2, ZoneFlow},
		{1, 2, ZoneFlow},
		{0, 2, ZoneSpark},
		{0, 3, ZoneTalk},
		{4, 0, ZoneTalk},
	}
	for _, tt := range tests {
		got := ClassifyZone(c, "passion_1", answer("passion_1", PartnerA, tt.a), answer("passion_1", PartnerB, tt.b))
		assert.Equal(t, tt.want, got, "options %d/%d", tt.a, tt.b)
	}
}

func TestClassifyZoneIsSymmetric(t *testing.T) {
	c := newTestCatalog(t)
	for a := range 11 {
		for b := range 11 {
			ab := ClassifyZone(c, "wide", answer("wide", PartnerA, a), answer("wide", PartnerB, b))
			ba := ClassifyZone(c, "wide", answer("wide", PartnerA, b), answer("wide", PartnerB, a))
			require.Equal(t, ab, ba, "options %d/%d", a, b)
		}
	}
}

func TestClassifyZoneTalkPair(t *testing.T) {
	c := newTestCatalog(t)

	// 0 and 1 would be flow on distance alone.
	got := ClassifyZone(c, "paired", answer("paired", PartnerA, 0), answer("paired", PartnerB, 1))
	assert.Equal(t, ZoneTalk, got)
	got = ClassifyZone(c, "paired", answer("paired", PartnerA, 1), answer("paired", PartnerB, 0))
	assert.Equal(t, ZoneTalk, got)

	got = ClassifyZone(c, "paired", answer("paired", PartnerA, 1), answer("paired", PartnerB, 2))
	assert.Equal(t, ZoneFlow, got)
}

func TestClassifyZoneUnresolvable(t *testing.T) {
	c := newTestCatalog(t)

	assert.Equal(t, ZoneTalk, ClassifyZone(c, "nope", answer("nope", PartnerA, 0), answer("nope", PartnerB, 0)))
	assert.Equal(t, ZoneTalk, ClassifyZone(c, "passion_1", answer("passion_1", PartnerA, 0), answer("passion_2", PartnerB, 0)))
	assert.Equal(t, ZoneTalk, ClassifyZone(c, "passion_1", answer("passion_1", PartnerA, 5), answer("passion_1", PartnerB, 4)))
	assert.Equal(t, ZoneTalk, ClassifyZone(c, "passion_1", answer("passion_1", PartnerA, -1), answer("passion_1", PartnerB, 0)))
}

func TestSimilarity(t *testing.T) {
	c := newTestCatalog(t)

	s, err := Similarity(c, "wide", answer("wide", PartnerA, 0), answer("wide", PartnerB, 5))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s, 1e-9)

	_, err = Similarity(c, "nope", Answer{}, Answer{})
	require.ErrorIs(t, err, ErrUnknownQuiz)

	_, err = Similarity(c, "wide", answer("wide", PartnerA, 11), answer("wide", PartnerB, 0))
	require.ErrorIs(t, err, ErrInvalidAnswer)
}
