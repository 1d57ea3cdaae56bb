// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"time"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusUnknown   MessageStatus = "unknown"
)

// ParseMessageStatus maps a raw status string onto the known set.
// An empty value means sent; anything unrecognised becomes unknown.
func ParseMessageStatus(raw string) MessageStatus {
	switch MessageStatus(raw) {
	case "":
		return MessageStatusSent
	case MessageStatusSent, MessageStatusDelivered, MessageStatusRead, MessageStatusUnknown:
		return MessageStatus(raw)
	default:
		return MessageStatusUnknown
	}
}

// Message represents a message in the database.
type Message struct {
	ID            int64          `db:"id" json:"id"`
	ContactID     string         `db:"contact_id" json:"contact_id"`
	ContactName   sql.NullString `db:"contact_name" json:"contact_name,omitempty"`
	ContactNumber sql.NullString `db:"contact_number" json:"contact_number,omitempty"`
	Text          string         `db:"text" json:"text"`
	Timestamp     time.Time      `db:"timestamp" json:"timestamp"`
	Status        MessageStatus  `db:"status" json:"status"`
	PrimaryID     sql.NullString `db:"primary_id" json:"primary_id,omitempty"`
	FallbackID    sql.NullString `db:"fallback_id" json:"fallback_id,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// NewMessage is a creation request for a message record. Optional
// fields are nil when the source did not carry them.
type NewMessage struct {
	ContactID     string
	ContactName   *string
	ContactNumber *string
	Text          string
	Timestamp     time.Time
	Status        MessageStatus
	PrimaryID     *string
	FallbackID    *string
}

// ChatSummary is one row of the chat list: a contact and its latest message.
type ChatSummary struct {
	ContactID     string
	ContactName   sql.NullString
	ContactNumber sql.NullString
	LastMessage   string
	LastTimestamp time.Time
	LastStatus    MessageStatus
	LastPrimaryID sql.NullString
}
