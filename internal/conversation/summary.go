// Package conversation builds the chat list view from stored messages.
package conversation

import (
	"sort"

	"github.com/ppopeskul/wa-inbox/internal/models"
)

// Summarize returns one summary per contact, built from that contact's most
// recent message by timestamp, ordered newest conversation first.
// Input order does not matter. Equal timestamps keep the earlier message.
func Summarize(messages []*models.Message) []models.ChatSummary {
	latest := make(map[string]*models.Message)
	order := make([]string, 0)

	for _, msg := range messages {
		if msg == nil {
			continue
		}
		current, ok := latest[msg.ContactID]
		if !ok {
			order = append(order, msg.ContactID)
			latest[msg.ContactID] = msg
			continue
		}
		if msg.Timestamp.After(current.Timestamp) {
			latest[msg.ContactID] = msg
		}
	}

	summaries := make([]models.ChatSummary, 0, len(order))
	for _, contactID := range order {
		msg := latest[contactID]
		summaries = append(summaries, models.ChatSummary{
			ContactID:     msg.ContactID,
			ContactName:   msg.ContactName,
			ContactNumber: msg.ContactNumber,
			LastMessage:   msg.Text,
			LastTimestamp: msg.Timestamp,
			LastStatus:    msg.Status,
			LastPrimaryID: msg.PrimaryID,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastTimestamp.After(summaries[j].LastTimestamp)
	})

	return summaries
}
