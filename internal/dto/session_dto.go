package dto

// SubmitRecordingInput carries a parsed audio submission into the pipeline.
// Exactly one of TierID / TierName must identify the immersion tier.
type SubmitRecordingInput struct {
	UserID   string
	TierID   int
	TierName string
	Audio    []byte
	Filename string
}

// ModelOutput is the derived analysis summary echoed back to the client.
type ModelOutput struct {
	AnxietyPct float64 `json:"anxiety_pct"`
	Band       string  `json:"band"`
}

// SessionDetail is the scoring detail of a reconciled attempt.
type SessionDetail struct {
	StarRating         int    `json:"star_rating"`
	ProgressPercentage int    `json:"progress_percentage"`
	PausesCount        int    `json:"pauses_count"`
	TierUpdated        bool   `json:"tier_updated"`
	NewTier            string `json:"new_tier"`
}

// SessionResultResponse is the success payload of a scored submission.
// NoVoiceDetected marks the soft-success path: the analysis finished but
// produced no usable signal, so scores are zeroed and nothing was persisted.
type SessionResultResponse struct {
	AttemptID       string        `json:"attempt_id,omitempty"`
	NoVoiceDetected bool          `json:"no_voice_detected,omitempty"`
	Model           ModelOutput   `json:"model"`
	Detail          SessionDetail `json:"detail"`
}

// EvalDetail is the scoring detail of a practice-only evaluation.
type EvalDetail struct {
	StarRating         int `json:"star_rating"`
	ProgressPercentage int `json:"progress_percentage"`
	PausesCount        int `json:"pauses_count"`
}

// EvalResultResponse is the payload of the practice endpoint; nothing is
// persisted on this path.
type EvalResultResponse struct {
	NoVoiceDetected bool        `json:"no_voice_detected,omitempty"`
	Model           ModelOutput `json:"model"`
	Detail          EvalDetail  `json:"detail"`
}

// ManualSessionRequest records a session verbatim for non-audio clients.
type ManualSessionRequest struct {
	TierID             int    `json:"tier_id"`
	EmotionResult      string `json:"emotion_result"`
	PausesCount        int    `json:"pauses_count"`
	PerformanceSummary string `json:"performance_summary"`
	StarRating         int    `json:"star_rating"`
	ProgressPercentage int    `json:"progress_percentage"`
}

// ManualSessionResponse returns the stored attempt id.
type ManualSessionResponse struct {
	AttemptID string `json:"attempt_id"`
}
