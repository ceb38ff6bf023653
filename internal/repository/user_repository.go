package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speaklab/internal/domain"
	"speaklab/internal/repository/models"
	"speaklab/internal/util"

	"github.com/jmoiron/sqlx"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	// GetTierForUpdate reads the user's stored tier under a row lock so
	// concurrent submissions cannot lose a tier advancement.
	GetTierForUpdate(ctx context.Context, userID string) (domain.Tier, error)
	UpdateTier(ctx context.Context, userID string, tier domain.Tier) error
	Delete(ctx context.Context, userID string) error
}

type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	var birthdate *time.Time
	if m.Birthdate.Valid {
		t := m.Birthdate.Time
		birthdate = &t
	}
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		College:      m.College.String,
		Birthdate:    birthdate,
		Gender:       m.Gender.String,
		CurrentTier:  domain.Tier(m.CurrentTier),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	var birthdate sql.NullTime
	if u.Birthdate != nil {
		birthdate = util.TimeToNullTime(*u.Birthdate)
	}
	return &models.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		College:      util.StringToNullString(u.College),
		Birthdate:    birthdate,
		Gender:       util.StringToNullString(u.Gender),
		CurrentTier:  int(u.CurrentTier),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	executor := GetExecutor(ctx, r.db)

	m := fromDomainUser(user)
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	query := `INSERT INTO users (id, email, username, password_hash, college, birthdate, gender, current_tier, created_at, updated_at)
	          VALUES (:id, :email, :username, :password_hash, :college, :birthdate, :gender, :current_tier, :created_at, :updated_at)`
	if _, err := executor.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.User
	query := `SELECT id, email, username, password_hash, college, birthdate, gender, current_tier, created_at, updated_at
	          FROM users WHERE id = $1`
	err := executor.GetContext(ctx, &m, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toDomainUser(&m), nil
}

func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.User
	query := `SELECT id, email, username, password_hash, college, birthdate, gender, current_tier, created_at, updated_at
	          FROM users WHERE email = $1`
	err := executor.GetContext(ctx, &m, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toDomainUser(&m), nil
}

func (r *sqlxUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	executor := GetExecutor(ctx, r.db)

	var count int
	query := `SELECT COUNT(1) FROM users WHERE email = $1 OR username = $2`
	if err := executor.GetContext(ctx, &count, query, email, username); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *sqlxUserRepository) GetTierForUpdate(ctx context.Context, userID string) (domain.Tier, error) {
	executor := GetExecutor(ctx, r.db)

	var tier int
	query := `SELECT current_tier FROM users WHERE id = $1 FOR UPDATE`
	err := executor.GetContext(ctx, &tier, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
		}
		return 0, fmt.Errorf("failed to lock user tier: %w", err)
	}
	return domain.Tier(tier), nil
}

func (r *sqlxUserRepository) UpdateTier(ctx context.Context, userID string, tier domain.Tier) error {
	executor := GetExecutor(ctx, r.db)

	query := `UPDATE users SET current_tier = $2, updated_at = $3 WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, userID, int(tier), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update user tier: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *sqlxUserRepository) Delete(ctx context.Context, userID string) error {
	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
