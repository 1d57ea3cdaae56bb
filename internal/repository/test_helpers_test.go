package repository_test

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ppopeskul/wa-inbox/internal/models"
)

func insertTestMessage(db *sqlx.DB, contactID, text string, timestamp time.Time, primaryID, fallbackID *string) (int64, error) {
	var id int64
	query := `
		INSERT INTO messages (contact_id, contact_number, text, timestamp, status, primary_id, fallback_id, created_at, updated_at)
		VALUES ($1, $1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`

	now := time.Now()
	err := db.QueryRow(query, contactID, text, timestamp, models.MessageStatusSent, primaryID, fallbackID, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert test message: %w", err)
	}

	return id, nil
}

func getTestMessage(db *sqlx.DB, id int64) (*models.Message, error) {
	var msg models.Message
	err := db.Get(&msg, `SELECT * FROM messages WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test message: %w", err)
	}
	return &msg, nil
}

func ptr(s string) *string {
	return &s
}
