package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ppopeskul/wa-inbox/internal/models"
)

const messageColumns = `id, contact_id, contact_name, contact_number, text, timestamp, status,
		primary_id, fallback_id, created_at, updated_at`

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// CreateMessage inserts a message and returns the stored record.
func (r *messageRepository) CreateMessage(ctx context.Context, msg *models.NewMessage) (*models.Message, error) {
	query := `
		INSERT INTO messages (contact_id, contact_name, contact_number, text, timestamp, status,
		                      primary_id, fallback_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + messageColumns

	status := msg.Status
	if status == "" {
		status = models.MessageStatusSent
	}

	now := time.Now()
	timestamp := msg.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}

	var created models.Message
	err := r.db.GetContext(ctx, &created, query,
		msg.ContactID,
		nullString(msg.ContactName),
		nullString(msg.ContactNumber),
		msg.Text,
		timestamp,
		status,
		nullString(msg.PrimaryID),
		nullString(msg.FallbackID),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &created, nil
}

// UpdateStatusByPrimaryID sets the status of the first message carrying primaryID.
func (r *messageRepository) UpdateStatusByPrimaryID(ctx context.Context, primaryID string, status models.MessageStatus) (*models.Message, error) {
	return r.updateFirstMatch(ctx, "primary_id", primaryID, status)
}

// UpdateStatusByFallbackID sets the status of the first message carrying fallbackID.
func (r *messageRepository) UpdateStatusByFallbackID(ctx context.Context, fallbackID string, status models.MessageStatus) (*models.Message, error) {
	return r.updateFirstMatch(ctx, "fallback_id", fallbackID, status)
}

// updateFirstMatch updates at most one row. Identifiers are not unique, so
// the earliest inserted match wins.
func (r *messageRepository) updateFirstMatch(ctx context.Context, column, value string, status models.MessageStatus) (*models.Message, error) {
	query := fmt.Sprintf(`
		UPDATE messages
		SET status = $2,
		    updated_at = $3
		WHERE id = (
			SELECT id FROM messages
			WHERE %s = $1
			ORDER BY id ASC
			LIMIT 1
		)
		RETURNING %s`, column, messageColumns)

	var updated models.Message
	err := r.db.GetContext(ctx, &updated, query, value, status, time.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update message status by %s: %w", column, err)
	}

	return &updated, nil
}

// GetMessagesByContact returns a contact's messages oldest first.
func (r *messageRepository) GetMessagesByContact(ctx context.Context, contactID string) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE contact_id = $1
		ORDER BY timestamp ASC, id ASC`

	messages := []*models.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, contactID); err != nil {
		return nil, fmt.Errorf("failed to get messages by contact: %w", err)
	}

	return messages, nil
}

// GetAllMessages returns every stored message, newest first.
func (r *messageRepository) GetAllMessages(ctx context.Context) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		ORDER BY timestamp DESC, id ASC`

	messages := []*models.Message{}
	if err := r.db.SelectContext(ctx, &messages, query); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return messages, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{
		String: *s,
		Valid:  true,
	}
}
