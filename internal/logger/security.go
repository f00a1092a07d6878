// Package logger provides structured and security logging for the folio backend.
package logger

import (
	"log/slog"
	"os"
	"time"
)

// Event names a class of security-relevant occurrence
type Event string

const (
	EventAuthFailure       Event = "auth_failure"
	EventRateLimit         Event = "rate_limit"
	EventRejectedRecipient Event = "rejected_recipient"
	EventInvalidOrigin     Event = "invalid_origin"
	EventMalformedMail     Event = "malformed_mail"
)

// SecurityLogger records security events as warn-level JSON records.
// Callers pass only the fields listed per event; credentials never reach it.
type SecurityLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewSecurityLogger creates a SecurityLogger on top of base, tagging every
// record with component=security. A nil base logs JSON to stdout.
func NewSecurityLogger(base *slog.Logger) *SecurityLogger {
	if base == nil {
		base = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &SecurityLogger{
		logger: base.With(slog.String("component", "security")),
		now:    time.Now,
	}
}

// NewSecurityLoggerWithHandler creates a SecurityLogger writing straight to handler
func NewSecurityLoggerWithHandler(handler slog.Handler) *SecurityLogger {
	return &SecurityLogger{logger: slog.New(handler), now: time.Now}
}

// AuthFailure records a rejected admin token. reason is "missing_token" or "invalid_token".
func (s *SecurityLogger) AuthFailure(ip, path, reason string) {
	s.record(EventAuthFailure, ip,
		slog.String("path", path),
		slog.String("reason", reason))
}

// RateLimitExceeded records a request refused by the per-IP limiter
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	s.record(EventRateLimit, ip, slog.String("path", path))
}

// RejectedRecipient records mail refused because it was not addressed to a contact address
func (s *SecurityLogger) RejectedRecipient(ip, recipient string) {
	s.record(EventRejectedRecipient, ip, slog.String("recipient", recipient))
}

// InvalidOrigin records a websocket upgrade refused for its Origin header
func (s *SecurityLogger) InvalidOrigin(ip, origin string) {
	s.record(EventInvalidOrigin, ip, slog.String("origin", origin))
}

// MalformedMail records a DATA payload that could not be parsed as MIME
func (s *SecurityLogger) MalformedMail(ip, sender string) {
	s.record(EventMalformedMail, ip, slog.String("sender", sender))
}

func (s *SecurityLogger) record(event Event, ip string, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+3)
	args = append(args,
		slog.String("event_type", string(event)),
		slog.String("ip", ip),
		slog.Time("timestamp", s.now().UTC()))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	s.logger.Warn("security_event", args...)
}
