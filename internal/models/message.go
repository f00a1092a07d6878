package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a contact message
type Status string

const (
	StatusUnread  Status = "unread"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

// Statuses lists every valid message status
var Statuses = []Status{StatusUnread, StatusRead, StatusReplied}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusUnread, StatusRead, StatusReplied:
		return true
	}
	return false
}

// Message represents a contact-form submission in the admin inbox
type Message struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Name       string    `gorm:"not null;size:255"`
	Email      string    `gorm:"not null;size:255"`
	Body       string    `gorm:"column:message;not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
	Status     Status    `gorm:"not null;size:16;default:unread;index"`
	AdminNotes *string
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns the store-side identity and initial status
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = StatusUnread
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Timestamp is the seconds/nanoseconds pair used on the wire for creation times
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// NewTimestamp converts t into its wire representation
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// Time converts the wire representation back to a time.Time in UTC
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, ts.Nanoseconds).UTC()
}

type messageJSON struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	CreatedAt  Timestamp `json:"createdAt"`
	Status     Status    `json:"status"`
	AdminNotes *string   `json:"adminNotes,omitempty"`
}

// MarshalJSON encodes the message in its public wire shape
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Message:    m.Body,
		CreatedAt:  NewTimestamp(m.CreatedAt),
		Status:     m.Status,
		AdminNotes: m.AdminNotes,
	})
}

// UnmarshalJSON decodes the public wire shape
func (m *Message) UnmarshalJSON(data []byte) error {
	var w messageJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{
		ID:         w.ID,
		Name:       w.Name,
		Email:      w.Email,
		Body:       w.Message,
		CreatedAt:  w.CreatedAt.Time(),
		Status:     w.Status,
		AdminNotes: w.AdminNotes,
	}
	return nil
}

// MessageUpdate is a partial update; nil fields are left untouched
type MessageUpdate struct {
	Status     *Status `json:"status,omitempty"`
	AdminNotes *string `json:"adminNotes,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (u MessageUpdate) IsEmpty() bool {
	return u.Status == nil && u.AdminNotes == nil
}

// ContactSubmission is the public contact-form payload
type ContactSubmission struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,max=5000"`
}
