package handler

import (
	"database/sql"

	"github.com/samber/lo"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/models"
	"github.com/ppopeskul/wa-inbox/internal/service"
)

func toAPIMessage(m *models.Message) api.Message {
	return api.Message{
		Id:            m.ID,
		ContactId:     m.ContactID,
		ContactName:   nullable(m.ContactName),
		ContactNumber: nullable(m.ContactNumber),
		Text:          m.Text,
		Timestamp:     m.Timestamp,
		Status:        api.MessageStatus(m.Status),
		PrimaryId:     nullable(m.PrimaryID),
		FallbackId:    nullable(m.FallbackID),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// toAPIMessages never returns nil so empty lists encode as [].
func toAPIMessages(msgs []*models.Message) []api.Message {
	return lo.FilterMap(msgs, func(m *models.Message, _ int) (api.Message, bool) {
		if m == nil {
			return api.Message{}, false
		}
		return toAPIMessage(m), true
	})
}

func toAPIChats(chats []models.ChatSummary) []api.ChatSummary {
	return lo.Map(chats, func(c models.ChatSummary, _ int) api.ChatSummary {
		return api.ChatSummary{
			ContactId:     c.ContactID,
			Name:          nullable(c.ContactName),
			Number:        nullable(c.ContactNumber),
			LastMessage:   c.LastMessage,
			LastTimestamp: c.LastTimestamp,
			LastStatus:    api.MessageStatus(c.LastStatus),
			LastPrimaryId: nullable(c.LastPrimaryID),
		}
	})
}

func toAPIStatusOutcomes(outcomes []service.StatusOutcome) []api.StatusOutcome {
	return lo.Map(outcomes, func(o service.StatusOutcome, _ int) api.StatusOutcome {
		out := api.StatusOutcome{
			Id:      o.PrimaryID,
			MetaId:  o.FallbackID,
			Status:  api.MessageStatus(o.Status),
			Updated: o.Updated(),
		}
		if o.MatchedBy != service.MatchNone {
			out.MatchedBy = lo.ToPtr(api.StatusOutcomeMatchedBy(o.MatchedBy))
		}
		if o.Message != nil {
			out.Message = lo.ToPtr(toAPIMessage(o.Message))
		}
		if o.Err != nil {
			out.Error = lo.ToPtr(errorMessageStatusUpdateFailed)
		}
		return out
	})
}

func toAPIAuth(result *service.AuthResult) api.AuthResponse {
	return api.AuthResponse{
		Id:     result.User.ID,
		Name:   result.User.Name,
		Mobile: result.User.Mobile,
		Token:  result.Token,
	}
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return lo.ToPtr(s.String)
}
