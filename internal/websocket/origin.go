package websocket

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/welldanyogia/folio-backend/internal/logger"
)

// DefaultAllowedOrigin is trusted when no origins are configured
const DefaultAllowedOrigin = "http://localhost:3000"

// originPolicy decides which browser origins may open the notification socket
type originPolicy struct {
	any     bool
	allowed map[string]struct{}
	sec     *logger.SecurityLogger
}

func newOriginPolicy(origins []string, sec *logger.SecurityLogger) *originPolicy {
	p := &originPolicy{allowed: make(map[string]struct{}), sec: sec}
	for _, o := range origins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			p.any = true
		default:
			p.allowed[o] = struct{}{}
		}
	}
	if !p.any && len(p.allowed) == 0 {
		p.allowed[DefaultAllowedOrigin] = struct{}{}
	}
	return p
}

// check allows requests without an Origin header, which browsers always send
// on cross-site upgrades.
func (p *originPolicy) check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || p.any {
		return true
	}
	if _, ok := p.allowed[origin]; ok {
		return true
	}
	if p.sec != nil {
		p.sec.InvalidOrigin(clientIP(r), origin)
	}
	return false
}

// NewSecureUpgrader returns an upgrader that refuses origins outside
// allowedOrigins and reports each refusal to secLogger when it is non-nil.
func NewSecureUpgrader(allowedOrigins []string, secLogger *logger.SecurityLogger) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin:     newOriginPolicy(allowedOrigins, secLogger).check,
		ReadBufferSize:  maxFrameBytes * 2,
		WriteBufferSize: 4096,
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
