package service

import (
	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/models"
)

type HealthStatus struct {
	Status            api.HealthResponseStatus            `json:"status"`
	DatabaseStatus    api.HealthResponseDatabaseStatus    `json:"database_status"`
	RedisStatus       api.HealthResponseRedisStatus       `json:"redis_status,omitempty"`
	CacheBreakerState api.HealthResponseCacheBreakerState `json:"cache_breaker_state,omitempty"`
}

// WebhookKind tells which branch a webhook payload was routed to.
type WebhookKind int

const (
	WebhookKindNone WebhookKind = iota
	WebhookKindMessages
	WebhookKindStatuses
)

type WebhookResult struct {
	Kind     WebhookKind
	Created  []*models.Message
	Statuses []StatusOutcome
}

// MatchKey names the identifier a status update matched on.
type MatchKey string

const (
	MatchNone     MatchKey = ""
	MatchPrimary  MatchKey = "primary_id"
	MatchFallback MatchKey = "fallback_id"
)

// StatusOutcome reports what happened to one status update.
// Message is nil when nothing matched or Err is set.
type StatusOutcome struct {
	PrimaryID  *string
	FallbackID *string
	Status     models.MessageStatus
	MatchedBy  MatchKey
	Message    *models.Message
	Err        error
}

// Updated reports whether a stored message was changed.
func (o StatusOutcome) Updated() bool {
	return o.Message != nil
}

type SendMessageInput struct {
	ContactID string  `json:"contact_id" validate:"required"`
	Name      *string `json:"name"`
	Number    *string `json:"number"`
	Text      string  `json:"text" validate:"required"`
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Mobile   string `json:"mobile" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginInput struct {
	Mobile   string `json:"mobile" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User  *models.User
	Token string
}
