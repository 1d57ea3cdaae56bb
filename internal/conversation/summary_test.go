package conversation_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppopeskul/wa-inbox/internal/conversation"
	"github.com/ppopeskul/wa-inbox/internal/models"
)

func msg(contactID, text string, ts time.Time, status models.MessageStatus) *models.Message {
	return &models.Message{
		ContactID:     contactID,
		ContactName:   sql.NullString{String: "name-" + contactID, Valid: true},
		ContactNumber: sql.NullString{String: contactID, Valid: true},
		Text:          text,
		Timestamp:     ts,
		Status:        status,
		PrimaryID:     sql.NullString{String: text, Valid: true},
	}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		messages []*models.Message
		validate func(t *testing.T, got []models.ChatSummary)
	}{
		{
			name:     "empty input",
			messages: nil,
			validate: func(t *testing.T, got []models.ChatSummary) {
				assert.Empty(t, got)
			},
		},
		{
			name: "most recent conversation first",
			messages: []*models.Message{
				msg("A", "a1", base, models.MessageStatusSent),
				msg("B", "b1", base.Add(time.Minute), models.MessageStatusRead),
			},
			validate: func(t *testing.T, got []models.ChatSummary) {
				require.Len(t, got, 2)
				assert.Equal(t, "B", got[0].ContactID)
				assert.Equal(t, "A", got[1].ContactID)
			},
		},
		{
			name: "latest by timestamp, not input order",
			messages: []*models.Message{
				msg("A", "newest", base.Add(2*time.Hour), models.MessageStatusDelivered),
				msg("A", "oldest", base, models.MessageStatusRead),
				msg("A", "middle", base.Add(time.Hour), models.MessageStatusSent),
			},
			validate: func(t *testing.T, got []models.ChatSummary) {
				require.Len(t, got, 1)
				s := got[0]
				assert.Equal(t, "A", s.ContactID)
				assert.Equal(t, "name-A", s.ContactName.String)
				assert.Equal(t, "A", s.ContactNumber.String)
				assert.Equal(t, "newest", s.LastMessage)
				assert.Equal(t, base.Add(2*time.Hour), s.LastTimestamp)
				assert.Equal(t, models.MessageStatusDelivered, s.LastStatus)
				assert.Equal(t, "newest", s.LastPrimaryID.String)
			},
		},
		{
			name: "one entry per contact",
			messages: []*models.Message{
				msg("A", "a1", base, models.MessageStatusSent),
				msg("B", "b1", base.Add(3*time.Minute), models.MessageStatusSent),
				msg("A", "a2", base.Add(5*time.Minute), models.MessageStatusSent),
				msg("C", "c1", base.Add(time.Minute), models.MessageStatusSent),
				nil,
			},
			validate: func(t *testing.T, got []models.ChatSummary) {
				require.Len(t, got, 3)
				assert.Equal(t, []string{"A", "B", "C"}, []string{got[0].ContactID, got[1].ContactID, got[2].ContactID})
				assert.Equal(t, "a2", got[0].LastMessage)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, conversation.Summarize(tt.messages))
		})
	}
}
