package service

import (
	"context"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/auth"
	"github.com/ppopeskul/wa-inbox/internal/models"
	"github.com/ppopeskul/wa-inbox/internal/webhook"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

type MessageService interface {
	ProcessWebhook(ctx context.Context, body []byte) (*WebhookResult, error)
	CreateMessage(ctx context.Context, msg *models.NewMessage) (*models.Message, error)
	ApplyStatuses(ctx context.Context, updates []webhook.StatusUpdate) []StatusOutcome
	SendMessage(ctx context.Context, input SendMessageInput) (*models.Message, error)
	GetChats(ctx context.Context) ([]models.ChatSummary, error)
	GetMessages(ctx context.Context, contactID string) ([]*models.Message, error)
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	ValidateToken(token string) (*auth.Claims, error)
}

type HealthService interface {
	GetHealth(ctx context.Context) *HealthStatus
}

// ChatCache stores the computed chat list between writes. On a miss
// GetChats returns the cache generation, and SetChats only stores a list
// if no Invalidate has happened since that generation was read.
type ChatCache interface {
	GetChats(ctx context.Context) (chats []models.ChatSummary, generation int64, ok bool)
	SetChats(ctx context.Context, generation int64, chats []models.ChatSummary)
	Invalidate(ctx context.Context)
	BreakerState() api.HealthResponseCacheBreakerState
}
