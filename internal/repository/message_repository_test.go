package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppopeskul/wa-inbox/internal/models"
	"github.com/ppopeskul/wa-inbox/internal/repository"
)

func TestMessageRepository_CreateMessage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	ts := time.Unix(1700000000, 0).UTC()

	tests := []struct {
		name        string
		input       *models.NewMessage
		expectError bool
		validate    func(t *testing.T, msg *models.Message)
	}{
		{
			name: "all fields",
			input: &models.NewMessage{
				ContactID:     "111",
				ContactName:   ptr("Alice"),
				ContactNumber: ptr("111"),
				Text:          "hi",
				Timestamp:     ts,
				Status:        models.MessageStatusSent,
				PrimaryID:     ptr("m1"),
				FallbackID:    ptr("meta1"),
			},
			validate: func(t *testing.T, msg *models.Message) {
				assert.NotZero(t, msg.ID)
				assert.Equal(t, "111", msg.ContactID)
				assert.Equal(t, "Alice", msg.ContactName.String)
				assert.Equal(t, "111", msg.ContactNumber.String)
				assert.Equal(t, "hi", msg.Text)
				assert.True(t, ts.Equal(msg.Timestamp))
				assert.Equal(t, models.MessageStatusSent, msg.Status)
				assert.Equal(t, "m1", msg.PrimaryID.String)
				assert.Equal(t, "meta1", msg.FallbackID.String)
				assert.False(t, msg.CreatedAt.IsZero())
				assert.False(t, msg.UpdatedAt.IsZero())
			},
		},
		{
			name: "optional fields absent",
			input: &models.NewMessage{
				ContactID: "222",
				Text:      "",
			},
			validate: func(t *testing.T, msg *models.Message) {
				assert.False(t, msg.ContactName.Valid)
				assert.False(t, msg.ContactNumber.Valid)
				assert.False(t, msg.PrimaryID.Valid)
				assert.False(t, msg.FallbackID.Valid)
				assert.Equal(t, models.MessageStatusSent, msg.Status)
				assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
			},
		},
		{
			name:        "empty contact id rejected by schema",
			input:       &models.NewMessage{ContactID: "", Text: "x"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanupTestData(db)

			msg, err := repo.CreateMessage(ctx, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, msg)
				return
			}

			require.NoError(t, err)
			tt.validate(t, msg)
		})
	}
}

func TestMessageRepository_UpdateStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	ts := time.Now().UTC()

	t.Run("primary id updates only the matching record", func(t *testing.T) {
		cleanupTestData(db)
		targetID, err := insertTestMessage(db, "111", "hi", ts, ptr("m1"), nil)
		require.NoError(t, err)
		otherID, err := insertTestMessage(db, "111", "other", ts, ptr("m2"), nil)
		require.NoError(t, err)

		updated, err := repo.UpdateStatusByPrimaryID(ctx, "m1", models.MessageStatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, targetID, updated.ID)
		assert.Equal(t, models.MessageStatusDelivered, updated.Status)
		assert.Equal(t, "hi", updated.Text)

		other, err := getTestMessage(db, otherID)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusSent, other.Status)
	})

	t.Run("duplicate primary id updates first inserted only", func(t *testing.T) {
		cleanupTestData(db)
		firstID, err := insertTestMessage(db, "111", "first", ts, ptr("dup"), nil)
		require.NoError(t, err)
		secondID, err := insertTestMessage(db, "222", "second", ts, ptr("dup"), nil)
		require.NoError(t, err)

		updated, err := repo.UpdateStatusByPrimaryID(ctx, "dup", models.MessageStatusRead)
		require.NoError(t, err)
		assert.Equal(t, firstID, updated.ID)

		second, err := getTestMessage(db, secondID)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusSent, second.Status)
	})

	t.Run("fallback id", func(t *testing.T) {
		cleanupTestData(db)
		id, err := insertTestMessage(db, "333", "meta", ts, nil, ptr("meta-1"))
		require.NoError(t, err)

		_, err = repo.UpdateStatusByPrimaryID(ctx, "meta-1", models.MessageStatusRead)
		assert.ErrorIs(t, err, repository.ErrMessageNotFound)

		updated, err := repo.UpdateStatusByFallbackID(ctx, "meta-1", models.MessageStatusRead)
		require.NoError(t, err)
		assert.Equal(t, id, updated.ID)
		assert.Equal(t, models.MessageStatusRead, updated.Status)
	})

	t.Run("no match leaves store unchanged", func(t *testing.T) {
		cleanupTestData(db)
		id, err := insertTestMessage(db, "444", "untouched", ts, ptr("m4"), ptr("meta4"))
		require.NoError(t, err)

		_, err = repo.UpdateStatusByPrimaryID(ctx, "missing", models.MessageStatusRead)
		assert.ErrorIs(t, err, repository.ErrMessageNotFound)
		_, err = repo.UpdateStatusByFallbackID(ctx, "missing", models.MessageStatusRead)
		assert.ErrorIs(t, err, repository.ErrMessageNotFound)

		msg, err := getTestMessage(db, id)
		require.NoError(t, err)
		assert.Equal(t, models.MessageStatusSent, msg.Status)
	})
}

func TestMessageRepository_GetMessagesByContact(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	cleanupTestData(db)
	_, err := insertTestMessage(db, "111", "third", base.Add(2*time.Minute), nil, nil)
	require.NoError(t, err)
	_, err = insertTestMessage(db, "111", "first", base, nil, nil)
	require.NoError(t, err)
	_, err = insertTestMessage(db, "222", "elsewhere", base.Add(time.Minute), nil, nil)
	require.NoError(t, err)
	_, err = insertTestMessage(db, "111", "second", base.Add(time.Minute), nil, nil)
	require.NoError(t, err)

	messages, err := repo.GetMessagesByContact(ctx, "111")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)
	assert.Equal(t, "third", messages[2].Text)

	empty, err := repo.GetMessagesByContact(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMessageRepository_RoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	ts := time.UnixMilli(1700000000123).UTC()

	created, err := repo.CreateMessage(ctx, &models.NewMessage{
		ContactID: "555",
		Text:      "round trip",
		Timestamp: ts,
		Status:    models.MessageStatusSent,
		PrimaryID: ptr("rt-1"),
	})
	require.NoError(t, err)

	thread, err := repo.GetMessagesByContact(ctx, "555")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, created.ID, thread[0].ID)
	assert.Equal(t, "round trip", thread[0].Text)
	assert.True(t, ts.Equal(thread[0].Timestamp))
	assert.Equal(t, "rt-1", thread[0].PrimaryID.String)
}

func TestMessageRepository_GetAllMessages(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	cleanupTestData(db)
	for i, contact := range []string{"A", "B", "A"} {
		_, err := insertTestMessage(db, contact, contact, base.Add(time.Duration(i)*time.Hour), nil, nil)
		require.NoError(t, err)
	}

	messages, err := repo.GetAllMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].Timestamp.After(messages[i-1].Timestamp),
			"Messages should be ordered by timestamp DESC")
	}
}

func TestMessageRepository_ClosedConnection(t *testing.T) {
	db, cleanup := setupTestDB(t)
	cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()

	_, err := repo.CreateMessage(ctx, &models.NewMessage{ContactID: "1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create message")

	_, err = repo.UpdateStatusByPrimaryID(ctx, "m1", models.MessageStatusRead)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrMessageNotFound)

	_, err = repo.GetAllMessages(ctx)
	assert.Error(t, err)
}
