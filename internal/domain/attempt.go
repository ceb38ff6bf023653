package domain

import "time"

// Attempt is one scored submission of a recording for a user and tier.
// AnxietyPct is nil when the analysis produced no usable signal (such rows
// only exist through the manual session endpoint; the scoring pipeline never
// persists them).
type Attempt struct {
	ID         string
	UserID     string
	Tier       Tier
	AnxietyPct *float64
	Band       Band
	Stars      int
	Progress   int
	Pauses     int
	Summary    string
	PlayedAt   time.Time
}

// User is the account an attempt belongs to. CurrentTier is mutated only by
// tier advancement and never decreases.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	College      string
	Birthdate    *time.Time
	Gender       string
	CurrentTier  Tier
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// College is reference data shown at registration.
type College struct {
	ID   string
	Name string
}
