package fixtures

import (
	"fmt"
	"time"

	"github.com/welldanyogia/folio-backend/internal/models"
)

// BaseTime is the creation time of the newest fixture message
var BaseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// MessageBuilder creates test Message instances with fluent API
type MessageBuilder struct {
	message models.Message
}

// NewMessageBuilder creates a new MessageBuilder with sensible defaults
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		message: models.Message{
			ID:        "msg-1",
			Name:      "Ada Lovelace",
			Email:     "ada@example.com",
			Body:      "I enjoyed your portfolio and would like to talk.",
			CreatedAt: BaseTime,
			Status:    models.StatusUnread,
		},
	}
}

// WithID sets the message ID
func (b *MessageBuilder) WithID(id string) *MessageBuilder {
	b.message.ID = id
	return b
}

// WithSender sets sender name and email
func (b *MessageBuilder) WithSender(name, email string) *MessageBuilder {
	b.message.Name = name
	b.message.Email = email
	return b
}

// WithBody sets the message body
func (b *MessageBuilder) WithBody(body string) *MessageBuilder {
	b.message.Body = body
	return b
}

// WithStatus sets the message status
func (b *MessageBuilder) WithStatus(status models.Status) *MessageBuilder {
	b.message.Status = status
	return b
}

// WithAdminNotes sets the admin notes
func (b *MessageBuilder) WithAdminNotes(notes string) *MessageBuilder {
	b.message.AdminNotes = &notes
	return b
}

// WithCreatedAt sets the created timestamp
func (b *MessageBuilder) WithCreatedAt(t time.Time) *MessageBuilder {
	b.message.CreatedAt = t
	return b
}

// Build returns the constructed Message
func (b *MessageBuilder) Build() *models.Message {
	m := b.message
	return &m
}

// BuildValue returns the constructed Message as a value (not pointer)
func (b *MessageBuilder) BuildValue() models.Message {
	return b.message
}

// CreateMessages creates count messages, newest first, one hour apart,
// with ids msg-1..msg-N
func CreateMessages(count int, status models.Status) []models.Message {
	messages := make([]models.Message, count)
	for i := 0; i < count; i++ {
		messages[i] = NewMessageBuilder().
			WithID(fmt.Sprintf("msg-%d", i+1)).
			WithSender(generateName(i), fmt.Sprintf("sender%d@example.com", i+1)).
			WithStatus(status).
			WithCreatedAt(BaseTime.Add(-time.Duration(i) * time.Hour)).
			BuildValue()
	}
	return messages
}

// Helper functions for generating test data
func generateName(index int) string {
	names := []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov"}
	return names[index%len(names)]
}
