package domain

import "time"

// ProgressRecord is the all-time aggregate per (user, tier). Attempts counts
// every scored submission; MaxStars/MaxProgress move only on a lexicographic
// all-time best; Passed latches once 3 stars are reached. UpdatedAt reflects
// the last genuine improvement, not the last retry.
type ProgressRecord struct {
	UserID      string
	Tier        Tier
	Attempts    int
	MaxStars    int
	MaxProgress int
	Passed      bool
	UpdatedAt   time.Time
}
