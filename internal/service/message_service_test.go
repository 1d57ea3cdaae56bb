package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/ppopeskul/wa-inbox/internal/models"
	"github.com/ppopeskul/wa-inbox/internal/repository"
	repomocks "github.com/ppopeskul/wa-inbox/internal/repository/mocks"
	"github.com/ppopeskul/wa-inbox/internal/service"
	"github.com/ppopeskul/wa-inbox/internal/service/mocks"
	"github.com/ppopeskul/wa-inbox/internal/webhook"
)

type messageServiceDeps struct {
	repo     *repomocks.MockRepository
	messages *repomocks.MockMessageRepository
	cache    *mocks.MockChatCache
	svc      service.MessageService
}

func newMessageServiceDeps(t *testing.T) *messageServiceDeps {
	ctrl := gomock.NewController(t)

	d := &messageServiceDeps{
		repo:     repomocks.NewMockRepository(ctrl),
		messages: repomocks.NewMockMessageRepository(ctrl),
		cache:    mocks.NewMockChatCache(ctrl),
	}
	d.repo.EXPECT().Message().Return(d.messages).AnyTimes()
	d.svc = service.NewMessageService(d.repo, d.cache, zap.NewNop())

	return d
}

func strPtr(s string) *string { return &s }

func storedFrom(id int64, m *models.NewMessage) *models.Message {
	msg := &models.Message{
		ID:        id,
		ContactID: m.ContactID,
		Text:      m.Text,
		Timestamp: m.Timestamp,
		Status:    m.Status,
	}
	if m.ContactName != nil {
		msg.ContactName = sql.NullString{String: *m.ContactName, Valid: true}
	}
	if m.ContactNumber != nil {
		msg.ContactNumber = sql.NullString{String: *m.ContactNumber, Valid: true}
	}
	if m.PrimaryID != nil {
		msg.PrimaryID = sql.NullString{String: *m.PrimaryID, Valid: true}
	}
	if m.FallbackID != nil {
		msg.FallbackID = sql.NullString{String: *m.FallbackID, Valid: true}
	}
	return msg
}

func TestMessageService_ProcessWebhook_Messages(t *testing.T) {
	d := newMessageServiceDeps(t)
	ctx := context.Background()

	body := []byte(`{"entry":[{"changes":[{"value":{
		"contacts":[{"wa_id":"111","profile":{"name":"Alice"}}],
		"messages":[{"from":"111","id":"wamid.A","timestamp":"1700000000","text":{"body":"hi"}}]
	}}]}]}`)

	d.messages.EXPECT().
		CreateMessage(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, m *models.NewMessage) (*models.Message, error) {
			assert.Equal(t, "111", m.ContactID)
			require.NotNil(t, m.ContactName)
			assert.Equal(t, "Alice", *m.ContactName)
			assert.Equal(t, "hi", m.Text)
			assert.Equal(t, time.Unix(1700000000, 0).UTC(), m.Timestamp)
			assert.Equal(t, models.MessageStatusSent, m.Status)
			require.NotNil(t, m.PrimaryID)
			assert.Equal(t, "wamid.A", *m.PrimaryID)
			assert.Nil(t, m.FallbackID)
			return storedFrom(1, m), nil
		})
	d.cache.EXPECT().Invalidate(ctx)

	result, err := d.svc.ProcessWebhook(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, service.WebhookKindMessages, result.Kind)
	require.Len(t, result.Created, 1)
	assert.Equal(t, int64(1), result.Created[0].ID)
}

func TestMessageService_ProcessWebhook_MessagesTakePrecedence(t *testing.T) {
	d := newMessageServiceDeps(t)
	ctx := context.Background()

	body := []byte(`{"entry":[{"changes":[{"value":{
		"messages":[{"from":"222","body":"yo"}],
		"statuses":[{"id":"wamid.A","status":"read"}]
	}}]}]}`)

	d.messages.EXPECT().
		CreateMessage(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, m *models.NewMessage) (*models.Message, error) {
			return storedFrom(2, m), nil
		})
	d.cache.EXPECT().Invalidate(ctx)

	result, err := d.svc.ProcessWebhook(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, service.WebhookKindMessages, result.Kind)
	assert.Empty(t, result.Statuses)
}

func TestMessageService_ProcessWebhook_Statuses(t *testing.T) {
	d := newMessageServiceDeps(t)
	ctx := context.Background()

	body := []byte(`{"entry":[{"changes":[{"value":{
		"statuses":[{"id":"wamid.A","status":"read"}]
	}}]}]}`)

	updated := &models.Message{ID: 7, ContactID: "111", Status: models.MessageStatusRead}
	d.messages.EXPECT().UpdateStatusByPrimaryID(ctx, "wamid.A", models.MessageStatusRead).Return(updated, nil)
	d.cache.EXPECT().Invalidate(ctx)

	result, err := d.svc.ProcessWebhook(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, service.WebhookKindStatuses, result.Kind)
	require.Len(t, result.Statuses, 1)
	assert.True(t, result.Statuses[0].Updated())
	assert.Equal(t, service.MatchPrimary, result.Statuses[0].MatchedBy)
	assert.Equal(t, updated, result.Statuses[0].Message)
}

func TestMessageService_ProcessWebhook_Nothing(t *testing.T) {
	d := newMessageServiceDeps(t)

	result, err := d.svc.ProcessWebhook(context.Background(), []byte(`{"entry":[{"changes":[{"value":{"contacts":[]}}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, service.WebhookKindNone, result.Kind)
}

func TestMessageService_ProcessWebhook_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "invalid json", body: `{"entry":`, wantErr: webhook.ErrInvalidJSON},
		{name: "missing entry", body: `{}`, wantErr: webhook.ErrMissingEntry},
		{name: "empty entry", body: `{"entry":[]}`, wantErr: webhook.ErrMissingEntry},
		{name: "missing changes", body: `{"entry":[{}]}`, wantErr: webhook.ErrMissingChanges},
		{name: "empty changes", body: `{"entry":[{"changes":[]}]}`, wantErr: webhook.ErrMissingChanges},
		{
			name:    "message without contact",
			body:    `{"entry":[{"changes":[{"value":{"messages":[{"id":"wamid.X","text":{"body":"hi"}}]}}]}]}`,
			wantErr: service.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newMessageServiceDeps(t)

			result, err := d.svc.ProcessWebhook(context.Background(), []byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, service.ErrValidation)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMessageService_ProcessWebhook_RejectsBatchBeforeWriting(t *testing.T) {
	d := newMessageServiceDeps(t)

	// The second entry has no contact, so nothing may be written.
	body := []byte(`{"entry":[{"changes":[{"value":{
		"messages":[{"from":"111","body":"ok"},{"body":"orphan"}]
	}}]}]}`)

	_, err := d.svc.ProcessWebhook(context.Background(), body)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Contains(t, err.Error(), "messages[1]")
}

func TestMessageService_ProcessWebhook_StoreFailure(t *testing.T) {
	d := newMessageServiceDeps(t)
	ctx := context.Background()

	d.messages.EXPECT().CreateMessage(ctx, gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := d.svc.ProcessWebhook(ctx, []byte(`{"entry":[{"changes":[{"messages":[{"from":"1","body":"x"}]}]}]}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrValidation)
	assert.Contains(t, err.Error(), "failed to create message")
}

func TestMessageService_ApplyStatuses(t *testing.T) {
	ctx := context.Background()
	stored := &models.Message{ID: 1, ContactID: "111", Status: models.MessageStatusDelivered}

	tests := []struct {
		name        string
		update      webhook.StatusUpdate
		setup       func(d *messageServiceDeps)
		wantMatch   service.MatchKey
		wantUpdated bool
		wantErr     bool
	}{
		{
			name:   "primary id match",
			update: webhook.StatusUpdate{PrimaryID: strPtr("wamid.A"), FallbackID: strPtr("meta.A"), Status: models.MessageStatusDelivered},
			setup: func(d *messageServiceDeps) {
				d.messages.EXPECT().UpdateStatusByPrimaryID(ctx, "wamid.A", models.MessageStatusDelivered).Return(stored, nil)
				d.cache.EXPECT().Invalidate(ctx)
			},
			wantMatch:   service.MatchPrimary,
			wantUpdated: true,
		},
		{
			name:   "fallback id match after primary miss",
			update: webhook.StatusUpdate{PrimaryID: strPtr("wamid.Z"), FallbackID: strPtr("meta.A"), Status: models.MessageStatusDelivered},
			setup: func(d *messageServiceDeps) {
				d.messages.EXPECT().UpdateStatusByPrimaryID(ctx, "wamid.Z", models.MessageStatusDelivered).Return(nil, repository.ErrMessageNotFound)
				d.messages.EXPECT().UpdateStatusByFallbackID(ctx, "meta.A", models.MessageStatusDelivered).Return(stored, nil)
				d.cache.EXPECT().Invalidate(ctx)
			},
			wantMatch:   service.MatchFallback,
			wantUpdated: true,
		},
		{
			name:   "fallback only",
			update: webhook.StatusUpdate{FallbackID: strPtr("meta.A"), Status: models.MessageStatusDelivered},
			setup: func(d *messageServiceDeps) {
				d.messages.EXPECT().UpdateStatusByFallbackID(ctx, "meta.A", models.MessageStatusDelivered).Return(stored, nil)
				d.cache.EXPECT().Invalidate(ctx)
			},
			wantMatch:   service.MatchFallback,
			wantUpdated: true,
		},
		{
			name:   "no match is not an error",
			update: webhook.StatusUpdate{PrimaryID: strPtr("wamid.Z"), FallbackID: strPtr("meta.Z"), Status: models.MessageStatusRead},
			setup: func(d *messageServiceDeps) {
				d.messages.EXPECT().UpdateStatusByPrimaryID(ctx, "wamid.Z", models.MessageStatusRead).Return(nil, repository.ErrMessageNotFound)
				d.messages.EXPECT().UpdateStatusByFallbackID(ctx, "meta.Z", models.MessageStatusRead).Return(nil, repository.ErrMessageNotFound)
			},
		},
		{
			name:   "no identifiers",
			update: webhook.StatusUpdate{Status: models.MessageStatusRead},
			setup:  func(d *messageServiceDeps) {},
		},
		{
			name:   "store failure on primary skips fallback",
			update: webhook.StatusUpdate{PrimaryID: strPtr("wamid.A"), FallbackID: strPtr("meta.A"), Status: models.MessageStatusRead},
			setup: func(d *messageServiceDeps) {
				d.messages.EXPECT().UpdateStatusByPrimaryID(ctx, "wamid.A", models.MessageStatusRead).Return(nil, errors.New("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newMessageServiceDeps(t)
			tt.setup(d)

			outcomes := d.svc.ApplyStatuses(ctx, []webhook.StatusUpdate{tt.update})
			require.Len(t, outcomes, 1)

			outcome := outcomes[0]
			assert.Equal(t, tt.wantMatch, outcome.MatchedBy)
			assert.Equal(t, tt.wantUpdated, outcome.Updated())
			assert.Equal(t, tt.update.Status, outcome.Status)
			assert.Equal(t, tt.update.PrimaryID, outcome.PrimaryID)
			assert.Equal(t, tt.update.FallbackID, outcome.FallbackID)
			if tt.wantErr {
				assert.Error(t, outcome.Err)
			} else {
				assert.NoError(t, outcome.Err)
			}
		})
	}
}

func TestMessageService_ApplyStatuses_FailureDoesNotStopBatch(t *testing.T) {
	d := newMessageServiceDeps(t)
	ctx := context.Background()

	second := &models.Message{ID: 2, Status: models.MessageStatusRead}
	gomock.InOrder(
		d.messages.EXPECT().UpdateStatusByPrimaryID(ctx, "a", models.MessageStatusRead).Return(nil, errors.New("boom")),
		d.messages.EXPECT().UpdateStatusByPrimaryID(ctx, "b", models.MessageStatusRead).Return(second, nil),
	)
	d.cache.EXPECT().Invalidate(ctx).Times(1)

	outcomes := d.svc.ApplyStatuses(ctx, []webhook.StatusUpdate{
		{PrimaryID: strPtr("a"), Status: models.MessageStatusRead},
		{PrimaryID: strPtr("b"), Status: models.MessageStatusRead},
	})

	require.Len(t, outcomes, 2)
	assert.Error(t, outcomes[0].Err)
	assert.False(t, outcomes[0].Updated())
	assert.NoError(t, outcomes[1].Err)
	assert.Equal(t, second, outcomes[1].Message)
}

func TestMessageService_SendMessage(t *testing.T) {
	d := newMessageServiceDeps(t)
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Second)

	d.messages.EXPECT().
		CreateMessage(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, m *models.NewMessage) (*models.Message, error) {
			assert.Equal(t, "222", m.ContactID)
			assert.Equal(t, "hello", m.Text)
			assert.Equal(t, models.MessageStatusSent, m.Status)
			assert.Nil(t, m.ContactName)
			assert.Nil(t, m.ContactNumber)
			assert.Nil(t, m.FallbackID)
			require.NotNil(t, m.PrimaryID)

			id, err := ulid.ParseStrict(*m.PrimaryID)
			require.NoError(t, err)
			assert.WithinDuration(t, m.Timestamp, ulid.Time(id.Time()), time.Millisecond)
			assert.True(t, m.Timestamp.After(before))

			return storedFrom(3, m), nil
		})
	d.cache.EXPECT().Invalidate(ctx)

	msg, err := d.svc.SendMessage(ctx, service.SendMessageInput{ContactID: "222", Name: strPtr(""), Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusSent, msg.Status)
	assert.True(t, msg.PrimaryID.Valid)
	assert.NotEmpty(t, msg.PrimaryID.String)
}

func TestMessageService_SendMessage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   service.SendMessageInput
		wantMsg string
	}{
		{name: "missing contact", input: service.SendMessageInput{Text: "hi"}, wantMsg: "contact_id is required"},
		{name: "missing text", input: service.SendMessageInput{ContactID: "1"}, wantMsg: "text is required"},
		{name: "missing both", input: service.SendMessageInput{}, wantMsg: "contact_id is required, text is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newMessageServiceDeps(t)

			_, err := d.svc.SendMessage(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestMessageService_GetChats(t *testing.T) {
	ctx := context.Background()
	t0 := time.Unix(1700000000, 0).UTC()

	t.Run("cache hit skips the store", func(t *testing.T) {
		d := newMessageServiceDeps(t)
		cached := []models.ChatSummary{{ContactID: "111"}}
		d.cache.EXPECT().GetChats(ctx).Return(cached, int64(0), true)

		chats, err := d.svc.GetChats(ctx)
		require.NoError(t, err)
		assert.Equal(t, cached, chats)
	})

	t.Run("cache miss summarizes and stores", func(t *testing.T) {
		d := newMessageServiceDeps(t)
		all := []*models.Message{
			{ID: 3, ContactID: "222", Text: "later", Timestamp: t0.Add(time.Minute), Status: models.MessageStatusSent},
			{ID: 1, ContactID: "111", Text: "first", Timestamp: t0, Status: models.MessageStatusRead},
			{ID: 2, ContactID: "222", Text: "earlier", Timestamp: t0.Add(-time.Minute), Status: models.MessageStatusRead},
		}
		d.cache.EXPECT().GetChats(ctx).Return(nil, int64(4), false)
		d.messages.EXPECT().GetAllMessages(ctx).Return(all, nil)
		d.cache.EXPECT().SetChats(ctx, int64(4), gomock.Len(2))

		chats, err := d.svc.GetChats(ctx)
		require.NoError(t, err)
		require.Len(t, chats, 2)
		assert.Equal(t, "222", chats[0].ContactID)
		assert.Equal(t, "later", chats[0].LastMessage)
		assert.Equal(t, "111", chats[1].ContactID)
	})

	t.Run("store failure", func(t *testing.T) {
		d := newMessageServiceDeps(t)
		d.cache.EXPECT().GetChats(ctx).Return(nil, int64(0), false)
		d.messages.EXPECT().GetAllMessages(ctx).Return(nil, errors.New("db down"))

		_, err := d.svc.GetChats(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get messages")
	})
}

func TestMessageService_GetMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("returns thread", func(t *testing.T) {
		d := newMessageServiceDeps(t)
		thread := []*models.Message{{ID: 1, ContactID: "111"}, {ID: 2, ContactID: "111"}}
		d.messages.EXPECT().GetMessagesByContact(ctx, "111").Return(thread, nil)

		got, err := d.svc.GetMessages(ctx, "111")
		require.NoError(t, err)
		assert.Equal(t, thread, got)
	})

	t.Run("unknown contact is empty", func(t *testing.T) {
		d := newMessageServiceDeps(t)
		d.messages.EXPECT().GetMessagesByContact(ctx, "999").Return([]*models.Message{}, nil)

		got, err := d.svc.GetMessages(ctx, "999")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty contact id", func(t *testing.T) {
		d := newMessageServiceDeps(t)

		_, err := d.svc.GetMessages(ctx, "")
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}
