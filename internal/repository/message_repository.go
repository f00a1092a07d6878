package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/welldanyogia/folio-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInvalidInput   = errors.New("invalid input")
)

// uniqueViolation reports whether err is a primary key clash. Dialectors that
// translate errors yield gorm.ErrDuplicatedKey; the rest are matched on text.
func uniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	List(ctx context.Context, filter models.StatusFilter, limit, offset int) ([]models.Message, int64, error)
	CountUnread(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, update models.MessageUpdate) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// withStatus narrows a query to a single status unless the filter is "all"
func withStatus(filter models.StatusFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status, ok := filter.Status(); ok {
			return db.Where("status = ?", status)
		}
		return db
	}
}

// Create creates a new message
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	result := r.db.WithContext(ctx).Create(message)
	if result.Error != nil {
		if uniqueViolation(result.Error) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create message: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a message by its ID
func (r *messageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&message)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// List retrieves one window of messages, newest first, together with the number
// of messages matching the filter. Equal timestamps are ordered by id so that the
// same window always yields the same rows.
func (r *messageRepository) List(ctx context.Context, filter models.StatusFilter, limit, offset int) ([]models.Message, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Scopes(withStatus(filter)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	messages := make([]models.Message, 0, limit)
	if total == 0 || int64(offset) >= total {
		return messages, total, nil
	}

	err := r.db.WithContext(ctx).
		Scopes(withStatus(filter)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, total, nil
}

// CountUnread counts unread messages across the whole inbox
func (r *messageRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("status = ?", models.StatusUnread).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", result.Error)
	}
	return count, nil
}

// Update applies a partial update and returns the stored message
func (r *messageRepository) Update(ctx context.Context, id string, update models.MessageUpdate) (*models.Message, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, ErrInvalidInput
	}

	var message models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&message).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load message: %w", err)
		}

		changes := make(map[string]interface{}, 2)
		if update.Status != nil {
			changes["status"] = *update.Status
			message.Status = *update.Status
		}
		if update.AdminNotes != nil {
			changes["admin_notes"] = *update.AdminNotes
			notes := *update.AdminNotes
			message.AdminNotes = &notes
		}
		if len(changes) == 0 {
			return nil
		}

		if err := tx.Model(&models.Message{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return fmt.Errorf("failed to update message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &message, nil
}

// Delete permanently removes a message by its ID
func (r *messageRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Message{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
