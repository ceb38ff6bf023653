package service

import (
	"context"
	"fmt"
	"math"

	"speaklab/internal/domain"
	"speaklab/internal/dto"
	"speaklab/internal/logger"
	"speaklab/internal/repository"

	"go.uber.org/zap"
)

// Calibration cut points for placing a brand-new user: a high baseline
// anxiety starts them gently, a low one starts them at the hardest tier.
const (
	calibrationEasyMin   = 66.7
	calibrationMediumMin = 33.3
)

// UserService defines the interface for user profile operations.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	ListProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	// AssignInitialTier places a new user on a starting tier from a baseline
	// anxiety reading. Like advancement, it never lowers a stored tier.
	AssignInitialTier(ctx context.Context, userID string, anxietyPctMax float64) (*dto.AssignInitialTierResponse, error)
	// DeleteAccount removes the user and everything hanging off them in one
	// transaction.
	DeleteAccount(ctx context.Context, userID string) error
}

type userServiceImpl struct {
	userRepo     repository.UserRepository
	attemptRepo  repository.AttemptRepository
	progressRepo repository.ProgressRepository
	txManager    domain.TransactionManager
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	userRepo repository.UserRepository,
	attemptRepo repository.AttemptRepository,
	progressRepo repository.ProgressRepository,
	txManager domain.TransactionManager,
) UserService {
	return &userServiceImpl{
		userRepo:     userRepo,
		attemptRepo:  attemptRepo,
		progressRepo: progressRepo,
		txManager:    txManager,
	}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user profile", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}

	return &dto.UserProfileResponse{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		College:         user.College,
		Birthdate:       user.Birthdate,
		Gender:          user.Gender,
		CurrentTierID:   int(user.CurrentTier),
		CurrentTierName: user.CurrentTier.String(),
		CreatedAt:       user.CreatedAt,
	}, nil
}

func (s *userServiceImpl) ListProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	records, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list progress", err)
	}

	items := make([]dto.ProgressItem, len(records))
	for i, r := range records {
		items[i] = dto.ProgressItem{
			TierID:      int(r.Tier),
			TierName:    r.Tier.String(),
			Attempts:    r.Attempts,
			MaxStars:    r.MaxStars,
			MaxProgress: r.MaxProgress,
			Passed:      r.Passed,
			LastUpdate:  r.UpdatedAt,
		}
	}
	return &dto.ProgressResponse{Progress: items}, nil
}

func (s *userServiceImpl) AssignInitialTier(ctx context.Context, userID string, anxietyPctMax float64) (*dto.AssignInitialTierResponse, error) {
	if math.IsNaN(anxietyPctMax) || anxietyPctMax < 0 || anxietyPctMax > 100 {
		return nil, domain.NewInvalidInputError("anxiety_pct_max must be between 0 and 100")
	}

	var assigned domain.Tier
	switch {
	case anxietyPctMax >= calibrationEasyMin:
		assigned = domain.TierEasy
	case anxietyPctMax >= calibrationMediumMin:
		assigned = domain.TierMedium
	default:
		assigned = domain.TierHard
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		stored, err := s.userRepo.GetTierForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		next := domain.MaxTier(stored, assigned)
		assigned = next
		if next == stored {
			return nil
		}
		return s.userRepo.UpdateTier(txCtx, userID, next)
	})
	if err != nil {
		if de, ok := err.(*domain.DomainError); ok {
			return nil, de
		}
		return nil, domain.NewPersistenceError("assign-initial-tier", err)
	}

	logger.Get().Info("Initial tier assigned",
		zap.String("userID", userID),
		zap.String("tier", assigned.String()),
		zap.Float64("anxietyPctMax", anxietyPctMax))

	return &dto.AssignInitialTierResponse{
		OK:            true,
		TierID:        int(assigned),
		TierName:      assigned.String(),
		AnxietyPctMax: anxietyPctMax,
	}, nil
}

func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return domain.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.attemptRepo.DeleteByUser(txCtx, userID); err != nil {
			return err
		}
		if err := s.progressRepo.DeleteByUser(txCtx, userID); err != nil {
			return err
		}
		return s.userRepo.Delete(txCtx, userID)
	})
	if err != nil {
		return domain.NewPersistenceError("delete-account", err)
	}

	logger.Get().Info("User account deleted", zap.String("userID", userID))
	return nil
}
