package domain

// NextTier decides the user's next difficulty tier from one attempt.
//
// An anxiety reading below jumpBelow means the user handled the pressure
// comfortably and is ready for Hard regardless of stars. A perfect 3-star
// attempt advances one step above the attempted tier. In every case the
// stored tier is a floor: replaying an easier tier can never move the user
// backward.
func NextTier(attempted Tier, stars int, anxietyPct float64, stored Tier, jumpBelow float64) Tier {
	proposed := attempted
	switch {
	case anxietyPct < jumpBelow:
		proposed = TierHard
	case stars == 3:
		proposed = attempted.Next()
	}
	return MaxTier(stored, proposed)
}
