package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const jumpBelow = 33.0

func TestNextTier_PerfectScoreAdvancesOneStep(t *testing.T) {
	assert.Equal(t, TierMedium, NextTier(TierEasy, 3, 50, TierEasy, jumpBelow))
	assert.Equal(t, TierHard, NextTier(TierMedium, 3, 40, TierMedium, jumpBelow))
}

func TestNextTier_HardIsTerminal(t *testing.T) {
	assert.Equal(t, TierHard, NextTier(TierHard, 3, 50, TierHard, jumpBelow))
}

func TestNextTier_LowAnxietyJumpsToHard(t *testing.T) {
	// Comfort under pressure outranks the star count.
	assert.Equal(t, TierHard, NextTier(TierEasy, 1, 10, TierEasy, jumpBelow))
	assert.Equal(t, TierHard, NextTier(TierEasy, 1, 32.9, TierEasy, jumpBelow))
	// At the cut point the jump does not trigger.
	assert.Equal(t, TierEasy, NextTier(TierEasy, 1, 33.0, TierEasy, jumpBelow))
}

func TestNextTier_StoredTierIsAFloor(t *testing.T) {
	// Replaying an easier tier, however well, never demotes the user.
	assert.Equal(t, TierHard, NextTier(TierEasy, 3, 50, TierHard, jumpBelow))
	assert.Equal(t, TierMedium, NextTier(TierEasy, 1, 90, TierMedium, jumpBelow))
}

func TestNextTier_ImperfectScoreStaysPut(t *testing.T) {
	assert.Equal(t, TierEasy, NextTier(TierEasy, 2, 50, TierEasy, jumpBelow))
	assert.Equal(t, TierMedium, NextTier(TierMedium, 1, 80, TierMedium, jumpBelow))
}

func TestNextTier_NeverDecreases(t *testing.T) {
	tiers := []Tier{TierEasy, TierMedium, TierHard}
	for _, attempted := range tiers {
		for _, stored := range tiers {
			for stars := 1; stars <= 3; stars++ {
				for _, anxiety := range []float64{5, 33, 50, 95} {
					next := NextTier(attempted, stars, anxiety, stored, jumpBelow)
					assert.GreaterOrEqual(t, int(next), int(stored),
						"attempted=%s stars=%d anxiety=%.0f stored=%s", attempted, stars, anxiety, stored)
				}
			}
		}
	}
}

func TestParseTierName(t *testing.T) {
	cases := map[string]Tier{
		"easy":      TierEasy,
		"EASY":      TierEasy,
		"  eas ":    TierEasy,
		"medium":    TierMedium,
		"med":       TierMedium,
		"int":       TierMedium,
		"hard":      TierHard,
		"difficult": TierHard,
	}
	for name, want := range cases {
		got, err := ParseTierName(name)
		assert.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseTierName("impossible")
	assert.Error(t, err)
	de, ok := err.(*DomainError)
	assert.True(t, ok)
	assert.Equal(t, ErrTierNotFound, de.Code)
}

func TestTierNext(t *testing.T) {
	assert.Equal(t, TierMedium, TierEasy.Next())
	assert.Equal(t, TierHard, TierMedium.Next())
	assert.Equal(t, TierHard, TierHard.Next())
}
