package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/auth"
	"github.com/ppopeskul/wa-inbox/internal/config"
	"github.com/ppopeskul/wa-inbox/internal/models"
	"github.com/ppopeskul/wa-inbox/internal/repository"
)

type authService struct {
	repo       repository.Repository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(cfg *config.AuthConfig, repo repository.Repository, logger *zap.Logger) AuthService {
	return &authService{
		repo:       repo,
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.TokenDuration()),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User().CreateUser(ctx, input.Name, input.Mobile, hash)
	if errors.Is(err, repository.ErrUserExists) {
		return nil, ErrMobileTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetUserByMobile(ctx, input.Mobile)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := auth.ComparePassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) ValidateToken(token string) (*auth.Claims, error) {
	return s.tokens.ValidateToken(token)
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Mobile)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
