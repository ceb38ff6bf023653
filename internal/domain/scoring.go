package domain

import (
	"fmt"
	"math"
)

// Band is the qualitative anxiety band reported back to the client.
type Band string

const (
	BandNone   Band = ""
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// StarCuts are the two anxiety cut points for one tier: anxiety at or below
// ThreeStarMax earns 3 stars, at or below TwoStarMax earns 2, else 1.
type StarCuts struct {
	ThreeStarMax float64
	TwoStarMax   float64
}

// ScoreThresholds is the full tunable threshold set for the deriver.
type ScoreThresholds struct {
	BandLowMax  float64
	BandHighMin float64
	Easy        StarCuts
	Medium      StarCuts
	Hard        StarCuts
}

// Score is the deterministic derivation of a single anxiety reading for a
// tier. Stars and Progress are never set independently of each other.
type Score struct {
	AnxietyPct float64
	Band       Band
	Stars      int
	Progress   int
}

// BetterThan reports whether s strictly beats (stars, progress) under the
// lexicographic order used for daily-best reconciliation and all-time bests.
func (s Score) BetterThan(stars, progress int) bool {
	if s.Stars != stars {
		return s.Stars > stars
	}
	return s.Progress > progress
}

// ScoreDeriver maps an anxiety percentage to (band, stars, progress) for a
// tier. Pure and deterministic; thresholds are fixed at construction.
type ScoreDeriver struct {
	thresholds ScoreThresholds
}

// NewScoreDeriver validates the threshold set: within each tier the 3-star
// cut must sit below the 2-star cut, and a harder tier must never be easier
// to star than a softer one.
func NewScoreDeriver(t ScoreThresholds) (*ScoreDeriver, error) {
	cuts := map[Tier]StarCuts{TierEasy: t.Easy, TierMedium: t.Medium, TierHard: t.Hard}
	for tier, c := range cuts {
		if c.ThreeStarMax >= c.TwoStarMax {
			return nil, fmt.Errorf("tier %s: three-star cut %.1f must be below two-star cut %.1f", tier, c.ThreeStarMax, c.TwoStarMax)
		}
	}
	if t.Hard.ThreeStarMax > t.Medium.ThreeStarMax || t.Medium.ThreeStarMax > t.Easy.ThreeStarMax {
		return nil, fmt.Errorf("three-star cuts must satisfy hard <= medium <= easy")
	}
	if t.Hard.TwoStarMax > t.Medium.TwoStarMax || t.Medium.TwoStarMax > t.Easy.TwoStarMax {
		return nil, fmt.Errorf("two-star cuts must satisfy hard <= medium <= easy")
	}
	if t.BandLowMax >= t.BandHighMin {
		return nil, fmt.Errorf("band cut points out of order: low max %.1f, high min %.1f", t.BandLowMax, t.BandHighMin)
	}
	return &ScoreDeriver{thresholds: t}, nil
}

// Derive computes the score for one anxiety reading. A non-finite reading
// returns an INVALID_SIGNAL error; the caller must treat that as "no voice
// detected", never as a score of zero.
func (d *ScoreDeriver) Derive(anxietyPct float64, tier Tier) (Score, error) {
	if math.IsNaN(anxietyPct) || math.IsInf(anxietyPct, 0) {
		return Score{}, NewInvalidSignalError()
	}
	if !tier.Valid() {
		return Score{}, NewInvalidInputError(fmt.Sprintf("invalid tier: %d", tier))
	}

	stars := d.stars(anxietyPct, tier)
	return Score{
		AnxietyPct: anxietyPct,
		Band:       d.band(anxietyPct),
		Stars:      stars,
		Progress:   ProgressFromStars(stars),
	}, nil
}

func (d *ScoreDeriver) band(a float64) Band {
	switch {
	case a < d.thresholds.BandLowMax:
		return BandLow
	case a <= d.thresholds.BandHighMin:
		return BandMedium
	default:
		return BandHigh
	}
}

func (d *ScoreDeriver) stars(a float64, tier Tier) int {
	var cuts StarCuts
	switch tier {
	case TierHard:
		cuts = d.thresholds.Hard
	case TierMedium:
		cuts = d.thresholds.Medium
	default:
		cuts = d.thresholds.Easy
	}
	switch {
	case a <= cuts.ThreeStarMax:
		return 3
	case a <= cuts.TwoStarMax:
		return 2
	default:
		return 1
	}
}

// ProgressFromStars is the canonical progress formula: a coarse readout of
// the star rating on a 0-100 scale (0, 33, 67, 100).
func ProgressFromStars(stars int) int {
	return int(math.Round(float64(stars) / 3.0 * 100.0))
}
