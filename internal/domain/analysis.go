package domain

import "context"

// AnalysisJob is the handle for one enqueued analysis of a recording.
type AnalysisJob struct {
	TaskID string
}

// AnalysisResult is the terminal output of an analysis job. AnxietyPct is nil
// when the model found no interpretable voice signal; PauseCount is optional.
type AnalysisResult struct {
	AnxietyPct *float64
	PauseCount *int
}

// AnalysisClient is the port to the external asynchronous anxiety scorer.
type AnalysisClient interface {
	// Submit uploads a recording and returns a job handle. A rejected or
	// unreachable service surfaces as UPSTREAM_UNAVAILABLE.
	Submit(ctx context.Context, audio []byte, filename string) (AnalysisJob, error)

	// PollUntilDone queries the job until it reports done or the configured
	// poll budget elapses (ANALYSIS_TIMEOUT). Transient upstream errors
	// during polling are treated as "not yet done". The wait respects ctx
	// and holds no database resources.
	PollUntilDone(ctx context.Context, job AnalysisJob) (*AnalysisResult, error)
}
