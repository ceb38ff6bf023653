package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"speaklab/internal/config"
	"speaklab/internal/domain"
	"speaklab/internal/dto"
	"speaklab/internal/logger"
	"speaklab/internal/repository"
	"speaklab/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeAccess = "access"

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, userID string, ttl time.Duration, tokenType string) (string, error)
}

type authServiceImpl struct {
	userRepo  repository.UserRepository
	appConfig *config.Config
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repository.UserRepository, appConfig *config.Config) (AuthService, error) {
	if appConfig.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret key for auth service is not configured")
	}
	return &authServiceImpl{userRepo: userRepo, appConfig: appConfig}, nil
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	appLogger := logger.Get()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewInvalidInputError("a valid email is required")
	}
	if username == "" {
		return nil, domain.NewInvalidInputError("username is required")
	}
	if len(req.Password) < 8 {
		return nil, domain.NewInvalidInputError("password must be at least 8 characters")
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, domain.NewInternalError("failed to check existing accounts", err)
	}
	if exists {
		return nil, domain.NewInvalidInputError("email or username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	var birthdate *time.Time
	if req.Birthdate != "" {
		t, err := time.Parse("2006-01-02", req.Birthdate)
		if err != nil {
			return nil, domain.NewInvalidInputError("birthdate must be formatted as YYYY-MM-DD")
		}
		birthdate = &t
	}

	user := &domain.User{
		ID:           util.NewULID(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		College:      strings.TrimSpace(req.College),
		Birthdate:    birthdate,
		Gender:       strings.TrimSpace(req.Gender),
		CurrentTier:  domain.TierEasy,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to create user", err)
	}
	appLogger.Info("New user registered", zap.String("userID", user.ID), zap.String("email", user.Email))

	token, err := s.CreateJWT(ctx, user.ID, s.appConfig.JWT.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return nil, domain.NewInternalError("failed to create access token", err)
	}
	return &dto.AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		AccessToken: token,
	}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	appLogger := logger.Get()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up user", err)
	}
	// A missing account and a wrong password are indistinguishable to the
	// caller.
	if user == nil {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		appLogger.Warn("Failed login attempt", zap.String("email", email))
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.CreateJWT(ctx, user.ID, s.appConfig.JWT.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return nil, domain.NewInternalError("failed to create access token", err)
	}

	appLogger.Info("User logged in", zap.String("userID", user.ID))
	return &dto.AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		AccessToken: token,
	}, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, userID string, ttl time.Duration, tokenType string) (string, error) {
	claims := dto.AuthClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.JWT.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	appLogger := logger.Get()
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			appLogger.Warn("JWT token expired", zap.Error(err))
		} else {
			appLogger.Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}
