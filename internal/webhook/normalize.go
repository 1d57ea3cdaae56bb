package webhook

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/ppopeskul/wa-inbox/internal/models"
)

// StatusUpdate is a delivery-status change addressed to a stored message.
type StatusUpdate struct {
	PrimaryID  *string
	FallbackID *string
	Status     models.MessageStatus
}

// Normalize turns the messages of a change into creation requests, one per
// entry and in input order. Timestamps missing from the source default to now.
// The contact id may come out empty; rejecting it is left to the caller.
func Normalize(change *Change, now time.Time) []models.NewMessage {
	if change == nil || len(change.Messages) == 0 {
		return nil
	}

	var contact Contact
	if len(change.Contacts) > 0 {
		contact = change.Contacts[0]
	}

	out := make([]models.NewMessage, 0, len(change.Messages))
	for _, entry := range change.Messages {
		contactID, _ := lo.Coalesce(contact.WaID, entry.From)
		text, _ := lo.Coalesce(entry.Text.Body, entry.Message.Text.Body, entry.Body)
		primaryID, _ := lo.Coalesce(entry.ID, entry.MessageID)

		out = append(out, models.NewMessage{
			ContactID:     contactID.Value,
			ContactName:   contact.Profile.Name.Ptr(),
			ContactNumber: contactID.Ptr(),
			Text:          text.Value,
			Timestamp:     entryTime(entry.Timestamp, now),
			Status:        models.MessageStatusSent,
			PrimaryID:     primaryID.Ptr(),
			FallbackID:    entry.MetaMsgID.Ptr(),
		})
	}

	return out
}

// ParseStatuses extracts the status updates of a change in input order.
func ParseStatuses(change *Change) []StatusUpdate {
	if change == nil || len(change.Statuses) == 0 {
		return nil
	}

	out := make([]StatusUpdate, 0, len(change.Statuses))
	for _, entry := range change.Statuses {
		primaryID, _ := lo.Coalesce(entry.ID, entry.MessageID, entry.MsgID)

		out = append(out, StatusUpdate{
			PrimaryID:  primaryID.Ptr(),
			FallbackID: entry.MetaMsgID.Ptr(),
			Status:     models.ParseMessageStatus(entry.Status.Value),
		})
	}

	return out
}

// maxEpochSeconds bounds accepted timestamps to roughly +-3000 years
// around 1970, well inside the range Postgres and int64 milliseconds hold.
const maxEpochSeconds = 1e11

// entryTime converts epoch seconds to a UTC instant with millisecond precision.
// Values that are not finite or fall outside maxEpochSeconds count as absent.
func entryTime(ts OptString, now time.Time) time.Time {
	seconds, ok := ts.Float()
	if !ok || math.IsNaN(seconds) || math.IsInf(seconds, 0) || math.Abs(seconds) > maxEpochSeconds {
		return now
	}
	return time.UnixMilli(int64(seconds * 1000)).UTC()
}
