package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	apperrors "github.com/welldanyogia/folio-backend/internal/errors"
	"github.com/welldanyogia/folio-backend/internal/metrics"
	"github.com/welldanyogia/folio-backend/internal/models"
	"github.com/welldanyogia/folio-backend/internal/repository"
	"github.com/welldanyogia/folio-backend/internal/validator"
)

// Submission sources, used as metric labels
const (
	SourceWeb  = "web"
	SourceMail = "mail"
)

// Field limits applied to submissions after sanitization
const (
	MaxNameLength    = 255
	MaxMessageLength = 5000
)

// Notifier is told about every newly stored message
type Notifier interface {
	NotifyNewMessage(ctx context.Context, message *models.Message) error
}

// InboxService defines the operations behind the admin inbox and the contact form
type InboxService interface {
	// ListPage returns one page of messages plus pagination metadata.
	// The request is normalized before use.
	ListPage(ctx context.Context, req models.PageRequest) (*models.PageResponse, error)

	// Get returns a single message without changing its status
	Get(ctx context.Context, id string) (*models.Message, error)

	// Submit validates and stores a new unread message, then notifies subscribers
	Submit(ctx context.Context, source string, submission models.ContactSubmission) (*models.Message, error)

	// Update applies a partial update to status and/or admin notes
	Update(ctx context.Context, id string, update models.MessageUpdate) (*models.Message, error)

	// Delete permanently removes a message
	Delete(ctx context.Context, id string) error
}

// inboxService implements InboxService
type inboxService struct {
	repo     repository.MessageRepository
	notifier Notifier
	logger   *slog.Logger
}

// NewInboxService creates a new InboxService. notifier may be nil.
func NewInboxService(repo repository.MessageRepository, notifier Notifier, logger *slog.Logger) InboxService {
	if logger == nil {
		logger = slog.Default()
	}
	return &inboxService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// NormalizePageRequest applies page, size and filter defaults to a raw request
func NormalizePageRequest(req models.PageRequest) models.PageRequest {
	req.Page, req.PageSize = validator.NormalizePage(req.Page, req.PageSize)
	req.Status = models.ParseStatusFilter(string(req.Status))
	return req
}

// ListPage returns the requested page using offset pagination
func (s *inboxService) ListPage(ctx context.Context, req models.PageRequest) (*models.PageResponse, error) {
	req = NormalizePageRequest(req)

	if req.LastDocID != "" {
		if err := validator.ValidateMessageID(req.LastDocID); err != nil {
			return nil, apperrors.Validation("invalid lastDocId")
		}
		// Pages are addressed by offset; the cursor is only recorded.
		s.logger.Debug("page request carries cursor",
			slog.Int("page", req.Page),
			slog.String("last_doc_id", req.LastDocID))
	}

	messages, total, err := s.repo.List(ctx, req.Status, req.PageSize, req.Offset())
	if err != nil {
		s.logger.Error("failed to list messages",
			slog.Int("page", req.Page),
			slog.Int("page_size", req.PageSize),
			slog.String("status", string(req.Status)),
			slog.Any("error", err))
		return nil, storeError(err)
	}

	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		s.logger.Error("failed to count unread messages", slog.Any("error", err))
		return nil, storeError(err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(req.PageSize)))

	pagination := models.Pagination{
		CurrentPage: req.Page,
		TotalPages:  totalPages,
		TotalCount:  total,
		PageSize:    req.PageSize,
		HasNext:     req.Page < totalPages,
		HasPrevious: req.Page > 1,
		UnreadCount: unread,
	}
	if len(messages) > 0 {
		pagination.LastDocID = messages[len(messages)-1].ID
	}

	return &models.PageResponse{
		Messages:   messages,
		Pagination: pagination,
	}, nil
}

// Get returns a single message
func (s *inboxService) Get(ctx context.Context, id string) (*models.Message, error) {
	if err := validator.ValidateMessageID(id); err != nil {
		return nil, apperrors.Validation("invalid message ID")
	}

	message, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError("get", id, err)
	}
	return message, nil
}

// Submit sanitizes and validates a contact submission and stores it as unread
func (s *inboxService) Submit(ctx context.Context, source string, submission models.ContactSubmission) (*models.Message, error) {
	submission.Name = validator.SanitizeString(submission.Name, MaxNameLength)
	submission.Email = strings.ToLower(validator.SanitizeString(submission.Email, 0))
	submission.Message = validator.SanitizeText(submission.Message, MaxMessageLength)

	if err := validator.ValidateStruct(submission); err != nil {
		metrics.RejectedSubmissions.WithLabelValues(source).Inc()
		return nil, apperrors.Validation(err.Error())
	}

	message := &models.Message{
		Name:   submission.Name,
		Email:  submission.Email,
		Body:   submission.Message,
		Status: models.StatusUnread,
	}

	if err := s.repo.Create(ctx, message); err != nil {
		s.logger.Error("failed to store message",
			slog.String("source", source),
			slog.Any("error", err))
		return nil, storeError(err)
	}

	metrics.MessagesReceived.WithLabelValues(source).Inc()
	s.logger.Info("message received",
		slog.String("id", message.ID),
		slog.String("source", source))

	s.notify(ctx, message)

	return message, nil
}

// notify relays the new message; failures never reach the submitter
func (s *inboxService) notify(ctx context.Context, message *models.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewMessage(ctx, message); err != nil {
		metrics.NotificationsFailed.Inc()
		s.logger.Warn("failed to relay new message notification",
			slog.String("id", message.ID),
			slog.Any("error", err))
		return
	}
	metrics.NotificationsSent.Inc()
}

// Update applies a partial update. The record is untouched when validation fails.
func (s *inboxService) Update(ctx context.Context, id string, update models.MessageUpdate) (*models.Message, error) {
	if err := validator.ValidateMessageID(id); err != nil {
		return nil, apperrors.Validation("invalid message ID")
	}
	if update.IsEmpty() {
		return nil, apperrors.ErrEmptyUpdate
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	message, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.mapError("update", id, err)
	}

	s.logger.Info("message updated",
		slog.String("id", id),
		slog.Bool("status_changed", update.Status != nil),
		slog.Bool("notes_changed", update.AdminNotes != nil))

	return message, nil
}

// Delete permanently removes a message
func (s *inboxService) Delete(ctx context.Context, id string) error {
	if err := validator.ValidateMessageID(id); err != nil {
		return apperrors.Validation("invalid message ID")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError("delete", id, err)
	}

	s.logger.Info("message deleted", slog.String("id", id))
	return nil
}

// mapError translates repository errors into application errors
func (s *inboxService) mapError(op, id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrMessageNotFound
	case errors.Is(err, repository.ErrInvalidInput):
		return apperrors.ErrInvalidStatus
	default:
		s.logger.Error("message store operation failed",
			slog.String("op", op),
			slog.String("id", id),
			slog.Any("error", err))
		return storeError(err)
	}
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
}
