package smtp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-smtp"
	apperrors "github.com/welldanyogia/folio-backend/internal/errors"
	"github.com/welldanyogia/folio-backend/internal/models"
	"github.com/welldanyogia/folio-backend/internal/services"
)

var (
	replyBadAddress = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 3},
		Message:      "Invalid recipient address",
	}
	replyNoMailbox = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 1},
		Message:      "Mailbox not found",
	}
	replyNoRecipients = &smtp.SMTPError{
		Code:         503,
		EnhancedCode: smtp.EnhancedCode{5, 5, 1},
		Message:      "No recipients specified",
	}
	replyUnparseable = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "Failed to parse email",
	}
	replyTryLater = &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Temporary error",
	}
)

// replyRejected is a permanent failure carrying the validation reason
func replyRejected(reason string) *smtp.SMTPError {
	return &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "Message rejected: " + reason,
	}
}

var errBadAddress = errors.New("invalid email address")

// Session is one SMTP transaction. A mail addressed to several contact
// addresses still becomes a single inbox message.
type Session struct {
	backend    *Backend
	remoteIP   string
	from       string
	recipients map[string]struct{}
}

// NewSession starts a transaction for a client connected from remoteIP
func NewSession(backend *Backend, remoteIP string) *Session {
	return &Session{backend: backend, remoteIP: remoteIP}
}

// Mail records the envelope sender
func (s *Session) Mail(from string, _ *smtp.MailOptions) error {
	s.from = normalizeAddress(from)
	s.backend.logger.Debug("MAIL FROM", slog.String("from", s.from))
	return nil
}

// Rcpt accepts only the configured contact addresses
func (s *Session) Rcpt(to string, _ *smtp.RcptOptions) error {
	addr := normalizeAddress(to)
	if _, _, err := splitAddress(addr); err != nil {
		return replyBadAddress
	}
	if !s.backend.Accepts(addr) {
		if s.backend.secLogger != nil {
			s.backend.secLogger.RejectedRecipient(s.remoteIP, addr)
		}
		return replyNoMailbox
	}

	if s.recipients == nil {
		s.recipients = make(map[string]struct{})
	}
	s.recipients[addr] = struct{}{}
	s.backend.logger.Debug("RCPT TO", slog.String("to", addr))
	return nil
}

// Data parses the mail and submits it to the inbox. Validation failures are
// permanent (550); store failures ask the sender to retry (451).
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return replyNoRecipients
	}

	parsed, err := ParseEmail(r)
	if err != nil {
		s.backend.logger.Warn("failed to parse email", slog.String("from", s.from), slog.Any("error", err))
		if s.backend.secLogger != nil {
			s.backend.secLogger.MalformedMail(s.remoteIP, s.from)
		}
		return replyUnparseable
	}
	if parsed.SenderEmail == "" {
		parsed.SenderEmail = s.from
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	message, err := s.backend.inbox.Submit(ctx, services.SourceMail, submissionFrom(parsed))
	switch {
	case apperrors.IsInvalidInput(err):
		return replyRejected(err.Error())
	case err != nil:
		s.backend.logger.Error("failed to store email", slog.Any("error", err))
		return replyTryLater
	}

	s.backend.logger.Info("email stored in inbox",
		slog.String("id", message.ID),
		slog.Int("recipients", len(s.recipients)),
		slog.Int("attachments", len(parsed.AttachmentNames)))
	return nil
}

// Reset drops the envelope so the connection can start a new transaction
func (s *Session) Reset() {
	s.from = ""
	s.recipients = nil
}

func (s *Session) Logout() error {
	return nil
}

// submissionFrom maps a parsed email onto a contact submission. Senders without
// a display name are shown by the local part of their address.
func submissionFrom(email *ParsedEmail) models.ContactSubmission {
	name := email.SenderName
	if name == "" {
		if local, _, err := splitAddress(email.SenderEmail); err == nil {
			name = local
		}
	}
	return models.ContactSubmission{
		Name:    name,
		Email:   email.SenderEmail,
		Message: ComposeBody(email),
	}
}

// splitAddress returns the lowercased local part and domain of address
func splitAddress(address string) (local, domain string, err error) {
	local, domain, ok := strings.Cut(normalizeAddress(address), "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", "", errBadAddress
	}
	return local, domain, nil
}
