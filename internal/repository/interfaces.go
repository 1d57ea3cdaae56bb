package repository

import (
	"context"

	"github.com/ppopeskul/wa-inbox/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping(ctx context.Context) error

	// Message returns message repository
	Message() MessageRepository

	// User returns user repository
	User() UserRepository
}

// MessageRepository interface defines message operations.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.NewMessage) (*models.Message, error)
	UpdateStatusByPrimaryID(ctx context.Context, primaryID string, status models.MessageStatus) (*models.Message, error)
	UpdateStatusByFallbackID(ctx context.Context, fallbackID string, status models.MessageStatus) (*models.Message, error)
	GetMessagesByContact(ctx context.Context, contactID string) ([]*models.Message, error)
	GetAllMessages(ctx context.Context) ([]*models.Message, error)
}

// UserRepository interface defines user account operations.
type UserRepository interface {
	CreateUser(ctx context.Context, name, mobile, passwordHash string) (*models.User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*models.User, error)
}
