package dto

import "time"

// UserProfileResponse defines the structure for a user's profile information.
type UserProfileResponse struct {
	ID              string     `json:"user_id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	College         string     `json:"college,omitempty"`
	Birthdate       *time.Time `json:"birthdate,omitempty"`
	Gender          string     `json:"gender,omitempty"`
	CurrentTierID   int        `json:"current_tier_id"`
	CurrentTierName string     `json:"current_tier_name"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ProgressItem is one tier's all-time aggregate for the progress listing.
type ProgressItem struct {
	TierID      int       `json:"tier_id"`
	TierName    string    `json:"tier_name"`
	Attempts    int       `json:"attempts"`
	MaxStars    int       `json:"max_stars"`
	MaxProgress int       `json:"max_progress"`
	Passed      bool      `json:"passed"`
	LastUpdate  time.Time `json:"last_update"`
}

// ProgressResponse lists the user's aggregates across tiers.
type ProgressResponse struct {
	Progress []ProgressItem `json:"progress"`
}

// AssignInitialTierRequest carries the calibration reading used to place a
// new user on a starting tier.
type AssignInitialTierRequest struct {
	AnxietyPctMax float64 `json:"anxiety_pct_max"`
}

// AssignInitialTierResponse echoes the assigned tier.
type AssignInitialTierResponse struct {
	OK            bool    `json:"ok"`
	TierID        int     `json:"tier_id"`
	TierName      string  `json:"tier_name"`
	AnxietyPctMax float64 `json:"anxiety_pct_max"`
}
