package service

import (
	"context"
	"fmt"
	"time"

	"speaklab/internal/domain"
	"speaklab/internal/dto"
	"speaklab/internal/logger"
	"speaklab/internal/repository"
	"speaklab/internal/util"

	"go.uber.org/zap"
)

// SessionService runs the exposure-session pipeline: analyze a recording,
// derive a score, reconcile it into the daily-best attempt, fold it into the
// all-time aggregate and advance the user's tier.
type SessionService interface {
	// SubmitRecording scores an audio submission and persists the outcome.
	SubmitRecording(ctx context.Context, input dto.SubmitRecordingInput) (*dto.SessionResultResponse, error)
	// EvaluateRecording scores an audio submission without touching storage.
	EvaluateRecording(ctx context.Context, input dto.SubmitRecordingInput) (*dto.EvalResultResponse, error)
	// RecordManualSession stores client-provided scores verbatim, bypassing
	// analysis, reconciliation and advancement.
	RecordManualSession(ctx context.Context, userID string, req *dto.ManualSessionRequest) (*dto.ManualSessionResponse, error)
}

type sessionServiceImpl struct {
	analysis  domain.AnalysisClient
	deriver   *domain.ScoreDeriver
	attempts  repository.AttemptRepository
	progress  repository.ProgressRepository
	users     repository.UserRepository
	locker    domain.ScopeLocker
	txManager domain.TransactionManager
	loc       *time.Location
	jumpBelow float64
	now       func() time.Time
}

// NewSessionService creates a new SessionService. loc anchors the daily
// window; jumpBelow is the anxiety level under which a user jumps straight to
// the hardest tier.
func NewSessionService(
	analysis domain.AnalysisClient,
	deriver *domain.ScoreDeriver,
	attempts repository.AttemptRepository,
	progress repository.ProgressRepository,
	users repository.UserRepository,
	locker domain.ScopeLocker,
	txManager domain.TransactionManager,
	loc *time.Location,
	jumpBelow float64,
) SessionService {
	return &sessionServiceImpl{
		analysis:  analysis,
		deriver:   deriver,
		attempts:  attempts,
		progress:  progress,
		users:     users,
		locker:    locker,
		txManager: txManager,
		loc:       loc,
		jumpBelow: jumpBelow,
		now:       time.Now,
	}
}

func (s *sessionServiceImpl) resolveTier(input dto.SubmitRecordingInput) (domain.Tier, error) {
	if input.TierID != 0 {
		tier := domain.Tier(input.TierID)
		if !tier.Valid() {
			return 0, domain.NewTierNotFoundError(fmt.Sprintf("%d", input.TierID))
		}
		return tier, nil
	}
	if input.TierName != "" {
		return domain.ParseTierName(input.TierName)
	}
	return 0, domain.NewInvalidInputError("a difficulty tier is required")
}

// analyze runs the submit + poll phase. It holds no database resources and
// returns nil AnxietyPct for the no-voice case.
func (s *sessionServiceImpl) analyze(ctx context.Context, input dto.SubmitRecordingInput) (*domain.AnalysisResult, error) {
	if len(input.Audio) == 0 {
		return nil, domain.NewInvalidInputError("audio payload is empty")
	}

	job, err := s.analysis.Submit(ctx, input.Audio, input.Filename)
	if err != nil {
		return nil, err
	}

	return s.analysis.PollUntilDone(ctx, job)
}

func (s *sessionServiceImpl) SubmitRecording(ctx context.Context, input dto.SubmitRecordingInput) (*dto.SessionResultResponse, error) {
	appLogger := logger.Get()

	tier, err := s.resolveTier(input)
	if err != nil {
		return nil, err
	}

	result, err := s.analyze(ctx, input)
	if err != nil {
		return nil, err
	}

	// No usable voice signal: report softly, zero everything, write nothing.
	// The submission does not count as an attempt.
	if result.AnxietyPct == nil {
		appLogger.Info("Analysis returned no usable signal",
			zap.String("userID", input.UserID),
			zap.String("tier", tier.String()))
		return &dto.SessionResultResponse{NoVoiceDetected: true}, nil
	}

	score, err := s.deriver.Derive(*result.AnxietyPct, tier)
	if err != nil {
		if de, ok := err.(*domain.DomainError); ok && de.Code == domain.ErrInvalidSignal {
			return &dto.SessionResultResponse{NoVoiceDetected: true}, nil
		}
		return nil, err
	}

	pauses := 0
	if result.PauseCount != nil {
		pauses = *result.PauseCount
	}

	now := s.now()
	attempt := &domain.Attempt{
		ID:         util.NewULID(),
		UserID:     input.UserID,
		Tier:       tier,
		AnxietyPct: result.AnxietyPct,
		Band:       score.Band,
		Stars:      score.Stars,
		Progress:   score.Progress,
		Pauses:     pauses,
		Summary:    fmt.Sprintf("anxiety=%.1f%% (tier=%s)", score.AnxietyPct, tier),
		PlayedAt:   now,
	}

	var (
		attemptID   string
		tierUpdated bool
		newTier     domain.Tier
	)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// Serialize on (user, tier, day) so concurrent submissions cannot
		// both observe "no attempt today" and insert twice.
		lockKey := domain.LockKey(tier, domain.DateKey(now, s.loc))
		if err := s.locker.AcquireExclusive(txCtx, input.UserID, lockKey); err != nil {
			return err
		}

		from, to := domain.DayBounds(now, s.loc)
		best, err := s.attempts.GetDailyBest(txCtx, input.UserID, tier, from, to)
		if err != nil {
			return err
		}

		switch {
		case best == nil:
			if err := s.attempts.Insert(txCtx, attempt); err != nil {
				return err
			}
			attemptID = attempt.ID
		case score.BetterThan(best.Stars, best.Progress):
			attempt.ID = best.ID
			if err := s.attempts.UpdateScore(txCtx, attempt); err != nil {
				return err
			}
			attemptID = best.ID
		default:
			// Today's row already beats this score; it stays untouched but
			// the submission still counts toward the aggregate.
			attemptID = best.ID
		}

		if err := s.progress.Record(txCtx, input.UserID, tier, score.Stars, score.Progress, now); err != nil {
			return err
		}

		stored, err := s.users.GetTierForUpdate(txCtx, input.UserID)
		if err != nil {
			return err
		}
		newTier = domain.NextTier(tier, score.Stars, score.AnxietyPct, stored, s.jumpBelow)
		if newTier != stored {
			if err := s.users.UpdateTier(txCtx, input.UserID, newTier); err != nil {
				return err
			}
			tierUpdated = true
		}
		return nil
	})
	if err != nil {
		if de, ok := err.(*domain.DomainError); ok {
			return nil, de
		}
		appLogger.Error("Session persistence failed",
			zap.String("userID", input.UserID),
			zap.String("tier", tier.String()),
			zap.Error(err))
		return nil, domain.NewPersistenceError("session-commit", err)
	}

	appLogger.Info("Session scored",
		zap.String("userID", input.UserID),
		zap.String("attemptID", attemptID),
		zap.String("tier", tier.String()),
		zap.Int("stars", score.Stars),
		zap.Bool("tierUpdated", tierUpdated))

	return &dto.SessionResultResponse{
		AttemptID: attemptID,
		Model: dto.ModelOutput{
			AnxietyPct: score.AnxietyPct,
			Band:       string(score.Band),
		},
		Detail: dto.SessionDetail{
			StarRating:         score.Stars,
			ProgressPercentage: score.Progress,
			PausesCount:        pauses,
			TierUpdated:        tierUpdated,
			NewTier:            newTier.String(),
		},
	}, nil
}

func (s *sessionServiceImpl) EvaluateRecording(ctx context.Context, input dto.SubmitRecordingInput) (*dto.EvalResultResponse, error) {
	tier, err := s.resolveTier(input)
	if err != nil {
		return nil, err
	}

	result, err := s.analyze(ctx, input)
	if err != nil {
		return nil, err
	}
	if result.AnxietyPct == nil {
		return &dto.EvalResultResponse{NoVoiceDetected: true}, nil
	}

	score, err := s.deriver.Derive(*result.AnxietyPct, tier)
	if err != nil {
		if de, ok := err.(*domain.DomainError); ok && de.Code == domain.ErrInvalidSignal {
			return &dto.EvalResultResponse{NoVoiceDetected: true}, nil
		}
		return nil, err
	}

	pauses := 0
	if result.PauseCount != nil {
		pauses = *result.PauseCount
	}

	return &dto.EvalResultResponse{
		Model: dto.ModelOutput{
			AnxietyPct: score.AnxietyPct,
			Band:       string(score.Band),
		},
		Detail: dto.EvalDetail{
			StarRating:         score.Stars,
			ProgressPercentage: score.Progress,
			PausesCount:        pauses,
		},
	}, nil
}

func (s *sessionServiceImpl) RecordManualSession(ctx context.Context, userID string, req *dto.ManualSessionRequest) (*dto.ManualSessionResponse, error) {
	tier := domain.Tier(req.TierID)
	if !tier.Valid() {
		return nil, domain.NewTierNotFoundError(fmt.Sprintf("%d", req.TierID))
	}
	if req.StarRating < 0 || req.StarRating > 3 {
		return nil, domain.NewInvalidInputError("star_rating must be between 0 and 3")
	}
	if req.ProgressPercentage < 0 || req.ProgressPercentage > 100 {
		return nil, domain.NewInvalidInputError("progress_percentage must be between 0 and 100")
	}

	attempt := &domain.Attempt{
		ID:       util.NewULID(),
		UserID:   userID,
		Tier:     tier,
		Band:     domain.Band(req.EmotionResult),
		Stars:    req.StarRating,
		Progress: req.ProgressPercentage,
		Pauses:   req.PausesCount,
		Summary:  req.PerformanceSummary,
		PlayedAt: s.now(),
	}
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.attempts.Insert(txCtx, attempt)
	})
	if err != nil {
		return nil, domain.NewPersistenceError("manual-session", err)
	}
	return &dto.ManualSessionResponse{AttemptID: attempt.ID}, nil
}
