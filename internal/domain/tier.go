package domain

import "strings"

// Tier is one of the ordered difficulty levels an attempt is scored against.
// The integer values define the total order used for monotonic advancement
// and double as the stable catalog IDs.
type Tier int

const (
	TierEasy   Tier = 1
	TierMedium Tier = 2
	TierHard   Tier = 3
)

func (t Tier) Valid() bool {
	return t >= TierEasy && t <= TierHard
}

func (t Tier) String() string {
	switch t {
	case TierEasy:
		return "easy"
	case TierMedium:
		return "medium"
	case TierHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Next returns the tier immediately above t. Hard is terminal.
func (t Tier) Next() Tier {
	if t >= TierHard {
		return TierHard
	}
	return t + 1
}

// MaxTier returns the higher of two tiers.
func MaxTier(a, b Tier) Tier {
	if a > b {
		return a
	}
	return b
}

// ParseTierName resolves a tier from a user-supplied name,
// case-insensitively and tolerant of truncated forms ("eas", "med", "har").
func ParseTierName(name string) (Tier, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(n, "eas"):
		return TierEasy, nil
	case strings.HasPrefix(n, "med") || strings.HasPrefix(n, "int"):
		return TierMedium, nil
	case strings.HasPrefix(n, "har") || strings.HasPrefix(n, "dif"):
		return TierHard, nil
	}
	return 0, NewTierNotFoundError(name)
}

// TierInfo is the catalog row behind a tier, as exposed to clients.
type TierInfo struct {
	ID              Tier
	Name            string
	DifficultyOrder int
	Description     string
}
