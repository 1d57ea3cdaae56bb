package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/conversation"
	"github.com/ppopeskul/wa-inbox/internal/metrics"
	"github.com/ppopeskul/wa-inbox/internal/models"
	"github.com/ppopeskul/wa-inbox/internal/repository"
	"github.com/ppopeskul/wa-inbox/internal/webhook"
)

type messageService struct {
	repo   repository.Repository
	cache  ChatCache
	logger *zap.Logger
	now    func() time.Time
	source string
}

func NewMessageService(repo repository.Repository, cache ChatCache, logger *zap.Logger) MessageService {
	return newMessageService(repo, cache, logger, metrics.SourceWebhook)
}

// NewIngestMessageService is NewMessageService with writes counted under
// the offline ingestion source.
func NewIngestMessageService(repo repository.Repository, cache ChatCache, logger *zap.Logger) MessageService {
	return newMessageService(repo, cache, logger, metrics.SourceIngest)
}

func newMessageService(repo repository.Repository, cache ChatCache, logger *zap.Logger, source string) *messageService {
	if cache == nil {
		cache = NewNoopChatCache()
	}
	return &messageService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
		source: source,
	}
}

// ProcessWebhook routes a raw webhook body to message creation or status
// reconciliation. Messages take precedence when both lists are present.
func (s *messageService) ProcessWebhook(ctx context.Context, body []byte) (*WebhookResult, error) {
	env, err := webhook.ParseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	change, err := env.Change()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return s.processChange(ctx, change)
}

func (s *messageService) processChange(ctx context.Context, change *webhook.Change) (*WebhookResult, error) {
	switch {
	case change.HasMessages:
		created, err := s.createAll(ctx, webhook.Normalize(change, s.now().UTC()))
		if err != nil {
			return nil, err
		}
		return &WebhookResult{Kind: WebhookKindMessages, Created: created}, nil
	case change.HasStatuses:
		outcomes := s.ApplyStatuses(ctx, webhook.ParseStatuses(change))
		return &WebhookResult{Kind: WebhookKindStatuses, Statuses: outcomes}, nil
	default:
		return &WebhookResult{Kind: WebhookKindNone}, nil
	}
}

// createAll validates every record before writing any of them.
func (s *messageService) createAll(ctx context.Context, msgs []models.NewMessage) ([]*models.Message, error) {
	for i := range msgs {
		if err := validateNewMessage(&msgs[i]); err != nil {
			return nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
	}

	created := make([]*models.Message, 0, len(msgs))
	for i := range msgs {
		msg, err := s.CreateMessage(ctx, &msgs[i])
		if err != nil {
			return created, err
		}
		created = append(created, msg)
	}

	return created, nil
}

func (s *messageService) CreateMessage(ctx context.Context, msg *models.NewMessage) (*models.Message, error) {
	if err := validateNewMessage(msg); err != nil {
		return nil, err
	}

	created, err := s.repo.Message().CreateMessage(ctx, msg)
	if err != nil {
		s.logger.Error("Failed to create message",
			zap.String("contact_id", msg.ContactID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	metrics.MessagesCreated.WithLabelValues(s.source).Inc()
	s.cache.Invalidate(ctx)

	s.logger.Debug("Message created",
		zap.Int64("id", created.ID),
		zap.String("contact_id", created.ContactID))

	return created, nil
}

// ApplyStatuses reconciles each update independently. A failure is
// recorded in that update's outcome and the rest of the batch still runs.
func (s *messageService) ApplyStatuses(ctx context.Context, updates []webhook.StatusUpdate) []StatusOutcome {
	outcomes := make([]StatusOutcome, 0, len(updates))
	changed := false

	for _, update := range updates {
		outcome := s.applyStatus(ctx, update)
		switch {
		case outcome.Err != nil:
			metrics.StatusUpdates.WithLabelValues("error").Inc()
			s.logger.Error("Failed to apply status update",
				zap.Stringp("primary_id", update.PrimaryID),
				zap.Stringp("fallback_id", update.FallbackID),
				zap.Error(outcome.Err))
		case outcome.Updated():
			changed = true
			metrics.StatusUpdates.WithLabelValues(string(outcome.MatchedBy)).Inc()
		default:
			metrics.StatusUpdates.WithLabelValues("no_match").Inc()
			s.logger.Info("Status update matched no message",
				zap.Stringp("primary_id", update.PrimaryID),
				zap.Stringp("fallback_id", update.FallbackID))
		}
		outcomes = append(outcomes, outcome)
	}

	if changed {
		s.cache.Invalidate(ctx)
	}

	return outcomes
}

func (s *messageService) applyStatus(ctx context.Context, update webhook.StatusUpdate) StatusOutcome {
	outcome := StatusOutcome{
		PrimaryID:  update.PrimaryID,
		FallbackID: update.FallbackID,
		Status:     update.Status,
	}

	if update.PrimaryID != nil {
		msg, err := s.repo.Message().UpdateStatusByPrimaryID(ctx, *update.PrimaryID, update.Status)
		switch {
		case err == nil:
			outcome.MatchedBy = MatchPrimary
			outcome.Message = msg
			return outcome
		case !errors.Is(err, repository.ErrMessageNotFound):
			outcome.Err = fmt.Errorf("failed to update status by primary id: %w", err)
			return outcome
		}
	}

	if update.FallbackID != nil {
		msg, err := s.repo.Message().UpdateStatusByFallbackID(ctx, *update.FallbackID, update.Status)
		switch {
		case err == nil:
			outcome.MatchedBy = MatchFallback
			outcome.Message = msg
		case !errors.Is(err, repository.ErrMessageNotFound):
			outcome.Err = fmt.Errorf("failed to update status by fallback id: %w", err)
		}
	}

	return outcome
}

// SendMessage records an outbound message typed by an operator.
func (s *messageService) SendMessage(ctx context.Context, input SendMessageInput) (*models.Message, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	primaryID := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	msg := &models.NewMessage{
		ContactID:     input.ContactID,
		ContactName:   nonEmpty(input.Name),
		ContactNumber: nonEmpty(input.Number),
		Text:          input.Text,
		Timestamp:     now,
		Status:        models.MessageStatusSent,
		PrimaryID:     &primaryID,
	}

	created, err := s.repo.Message().CreateMessage(ctx, msg)
	if err != nil {
		s.logger.Error("Failed to send message",
			zap.String("contact_id", input.ContactID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	metrics.MessagesCreated.WithLabelValues(metrics.SourceManual).Inc()
	s.cache.Invalidate(ctx)

	return created, nil
}

func (s *messageService) GetChats(ctx context.Context) ([]models.ChatSummary, error) {
	chats, generation, ok := s.cache.GetChats(ctx)
	if ok {
		return chats, nil
	}

	messages, err := s.repo.Message().GetAllMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	chats = conversation.Summarize(messages)
	s.cache.SetChats(ctx, generation, chats)

	return chats, nil
}

func (s *messageService) GetMessages(ctx context.Context, contactID string) ([]*models.Message, error) {
	if contactID == "" {
		return nil, fmt.Errorf("%w: contact_id is required", ErrValidation)
	}

	messages, err := s.repo.Message().GetMessagesByContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for contact: %w", err)
	}

	return messages, nil
}

func validateNewMessage(msg *models.NewMessage) error {
	if msg.ContactID == "" {
		return fmt.Errorf("%w: contact_id is required", ErrValidation)
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
