package models

import (
	"database/sql"
	"time"
)

// User is the users table row.
type User struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	Username     string         `db:"username"`
	PasswordHash string         `db:"password_hash"`
	College      sql.NullString `db:"college"`
	Birthdate    sql.NullTime   `db:"birthdate"`
	Gender       sql.NullString `db:"gender"`
	CurrentTier  int            `db:"current_tier"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Attempt is the attempts table row: one scored submission, including its
// detail fields. The daily-best rule updates scoring fields in place.
type Attempt struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	Tier        int             `db:"tier"`
	AnxietyPct  sql.NullFloat64 `db:"anxiety_pct"`
	Band        sql.NullString  `db:"band"`
	StarRating  int             `db:"star_rating"`
	ProgressPct int             `db:"progress_pct"`
	PausesCount int             `db:"pauses_count"`
	Summary     sql.NullString  `db:"summary"`
	PlayedAt    time.Time       `db:"played_at"`
}

// TierProgress is the user_tier_progress table row.
type TierProgress struct {
	UserID      string    `db:"user_id"`
	Tier        int       `db:"tier"`
	Attempts    int       `db:"attempts"`
	MaxStars    int       `db:"max_stars"`
	MaxProgress int       `db:"max_progress"`
	Passed      bool      `db:"passed"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Tier is the tiers reference table row.
type Tier struct {
	ID              int            `db:"id"`
	Name            string         `db:"name"`
	DifficultyOrder int            `db:"difficulty_order"`
	Description     sql.NullString `db:"description"`
}

// College is the colleges reference table row.
type College struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}
