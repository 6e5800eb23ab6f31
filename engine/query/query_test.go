package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Should normalize whitespace in query text", func(t *testing.T) {
		q, err := New("  current   score\tof India  ", "s1", nil)
		require.NoError(t, err)
		assert.Equal(t, "current score of India", q.Text)
	})

	t.Run("Should reject empty query text", func(t *testing.T) {
		_, err := New("   ", "", nil)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("Should copy the session context map", func(t *testing.T) {
		ctx := map[string]string{"locale": "en-IN"}
		q, err := New("kohli average", "", ctx)
		require.NoError(t, err)
		ctx["locale"] = "mutated"
		assert.Equal(t, "en-IN", q.Context["locale"])
	})
}

func TestSignature(t *testing.T) {
	t.Run("Should be order independent", func(t *testing.T) {
		a := Signature([]Entity{
			{Kind: EntityPlayer, Name: "Virat Kohli"},
			{Kind: EntityTeam, Name: "India"},
		})
		b := Signature([]Entity{
			{Kind: EntityTeam, Name: "India"},
			{Kind: EntityPlayer, Name: "Virat Kohli"},
		})
		assert.Equal(t, a, b)
	})

	t.Run("Should normalize case and spacing", func(t *testing.T) {
		a := Signature([]Entity{{Kind: EntityPlayer, Name: "Virat  KOHLI"}})
		b := Signature([]Entity{{Kind: EntityPlayer, Name: "virat kohli"}})
		assert.Equal(t, a, b)
	})

	t.Run("Should return sentinel for no entities", func(t *testing.T) {
		assert.Equal(t, "none", Signature(nil))
	})
}

func TestParseIntent(t *testing.T) {
	t.Run("Should parse known intents", func(t *testing.T) {
		assert.Equal(t, IntentComparison, ParseIntent("comparison"))
		assert.Equal(t, IntentBallLevel, ParseIntent("ball-level"))
		assert.Equal(t, IntentLive, ParseIntent(" Live "))
	})

	t.Run("Should fall back to factual for unknown values", func(t *testing.T) {
		assert.Equal(t, IntentFactual, ParseIntent("banter"))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("Should clamp complexity and confidence", func(t *testing.T) {
		r := &ClassificationResult{Intent: IntentLive, Complexity: 7, Confidence: 1.4}
		r.Normalize()
		assert.Equal(t, 3, r.Complexity)
		assert.Equal(t, 1.0, r.Confidence)
		assert.Equal(t, TemporalUnspecified, r.Temporal)
	})

	t.Run("Should raise zero complexity to one", func(t *testing.T) {
		r := &ClassificationResult{Intent: IntentFactual}
		r.Normalize()
		assert.Equal(t, 1, r.Complexity)
	})
}
