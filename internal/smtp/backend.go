// Package smtp bridges inbound mail for the contact addresses into the inbox.
package smtp

import (
	"crypto/tls"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/folio-backend/internal/logger"
	"github.com/welldanyogia/folio-backend/internal/services"
)

// Security limits
const (
	DefaultMaxMessageSize = 10 * 1024 * 1024 // 10 MB
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000

	// submitTimeout bounds storing one message
	submitTimeout = 30 * time.Second
)

// Backend implements the go-smtp Backend interface
type Backend struct {
	inbox     services.InboxService
	accepted  map[string]bool
	logger    *slog.Logger
	secLogger *logger.SecurityLogger
}

// BackendConfig holds configuration for the SMTP backend
type BackendConfig struct {
	Inbox services.InboxService

	// ContactAddresses are the only recipients mail is accepted for
	ContactAddresses []string

	Logger         *slog.Logger
	SecurityLogger *logger.SecurityLogger
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg *BackendConfig) *Backend {
	accepted := make(map[string]bool, len(cfg.ContactAddresses))
	for _, addr := range cfg.ContactAddresses {
		if addr = normalizeAddress(addr); addr != "" {
			accepted[addr] = true
		}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Backend{
		inbox:     cfg.Inbox,
		accepted:  accepted,
		logger:    log.With(slog.String("component", "smtp")),
		secLogger: cfg.SecurityLogger,
	}
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	remoteIP := ""
	if conn := c.Conn(); conn != nil {
		remoteIP = hostOf(conn.RemoteAddr())
	}
	b.logger.Debug("new SMTP connection", slog.String("remote_ip", remoteIP))
	return NewSession(b, remoteIP), nil
}

// Accepts reports whether mail for address is delivered to the inbox
func (b *Backend) Accepts(address string) bool {
	return b.accepted[normalizeAddress(address)]
}

// ServerConfig sets the listener address and per-connection limits
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	TLSConfig      *tls.Config
}

func orDefault[T int | int64 | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// NewSecureServer builds the listener for the contact bridge. Zero limits
// take the package defaults. AUTH is never offered over plaintext since the
// bridge does not authenticate senders.
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)
	s.Addr = cfg.Addr
	s.Domain = cfg.Domain
	s.MaxMessageBytes = orDefault(cfg.MaxMessageSize, DefaultMaxMessageSize)
	s.MaxRecipients = orDefault(cfg.MaxRecipients, DefaultMaxRecipients)
	s.ReadTimeout = orDefault(cfg.ReadTimeout, DefaultReadTimeout)
	s.WriteTimeout = orDefault(cfg.WriteTimeout, DefaultWriteTimeout)
	s.MaxLineLength = DefaultMaxLineLength
	s.AllowInsecureAuth = false
	s.TLSConfig = cfg.TLSConfig
	return s
}

// normalizeAddress strips angle brackets and lowercases an address
func normalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	address = strings.TrimPrefix(address, "<")
	address = strings.TrimSuffix(address, ">")
	return strings.ToLower(strings.TrimSpace(address))
}

func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
