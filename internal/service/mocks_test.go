package service

import (
	"context"
	"time"

	"speaklab/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockAnalysisClient ---
type MockAnalysisClient struct {
	mock.Mock
}

func (m *MockAnalysisClient) Submit(ctx context.Context, audio []byte, filename string) (domain.AnalysisJob, error) {
	args := m.Called(ctx, audio, filename)
	return args.Get(0).(domain.AnalysisJob), args.Error(1)
}

func (m *MockAnalysisClient) PollUntilDone(ctx context.Context, job domain.AnalysisJob) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

// --- MockAttemptRepository ---
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) GetDailyBest(ctx context.Context, userID string, tier domain.Tier, from, to time.Time) (*domain.Attempt, error) {
	args := m.Called(ctx, userID, tier, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Insert(ctx context.Context, attempt *domain.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) UpdateScore(ctx context.Context, attempt *domain.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- MockProgressRepository ---
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Record(ctx context.Context, userID string, tier domain.Tier, stars, progress int, now time.Time) error {
	args := m.Called(ctx, userID, tier, stars, progress, now)
	return args.Error(0)
}

func (m *MockProgressRepository) ListByUser(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressRecord), args.Error(1)
}

func (m *MockProgressRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetTierForUpdate(ctx context.Context, userID string) (domain.Tier, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Tier), args.Error(1)
}

func (m *MockUserRepository) UpdateTier(ctx context.Context, userID string, tier domain.Tier) error {
	args := m.Called(ctx, userID, tier)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- MockCatalogRepository ---
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListTiers(ctx context.Context) ([]domain.TierInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TierInfo), args.Error(1)
}

func (m *MockCatalogRepository) GetTierByID(ctx context.Context, id domain.Tier) (*domain.TierInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TierInfo), args.Error(1)
}

func (m *MockCatalogRepository) GetTierByName(ctx context.Context, name string) (*domain.TierInfo, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TierInfo), args.Error(1)
}

func (m *MockCatalogRepository) ListColleges(ctx context.Context) ([]domain.College, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.College), args.Error(1)
}

// --- MockScopeLocker ---
type MockScopeLocker struct {
	mock.Mock
}

func (m *MockScopeLocker) AcquireExclusive(ctx context.Context, subjectID string, scopeKey int64) error {
	args := m.Called(ctx, subjectID, scopeKey)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeTxManager runs the function directly, without a real transaction. Calls
// records how many transactions were opened.
type fakeTxManager struct {
	Calls int
}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.Calls++
	return fn(ctx)
}
