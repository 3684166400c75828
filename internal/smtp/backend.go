// Package smtp accepts voicemail notification emails and logs them as
// voicemails for the account named by the recipient address.
package smtp

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/repository"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
)

// Security limits
const (
	DefaultMaxMessageSize = 10 * 1024 * 1024 // 10 MB
	DefaultMaxRecipients  = 20
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
	DefaultStoreTimeout   = 10 * time.Second
)

// Backend implements the go-smtp Backend interface
type Backend struct {
	accounts     repository.AccountRepository
	voicemails   services.VoicemailService
	domain       string
	takenBy      string
	storeTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// BackendConfig holds configuration for the SMTP backend
type BackendConfig struct {
	Accounts   repository.AccountRepository
	Voicemails services.VoicemailService
	// Domain is the only recipient domain accepted
	Domain string
	// TakenBy is recorded as the taker of every emailed voicemail
	TakenBy string
	Logger  *slog.Logger
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg *BackendConfig) *Backend {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		accounts:     cfg.Accounts,
		voicemails:   cfg.Voicemails,
		domain:       strings.ToLower(strings.TrimSpace(cfg.Domain)),
		takenBy:      cfg.TakenBy,
		storeTimeout: DefaultStoreTimeout,
		now:          time.Now,
		logger:       logger,
	}
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	remote := ""
	if c != nil && c.Conn() != nil {
		remote = c.Conn().RemoteAddr().String()
	}
	b.logger.Debug("new SMTP connection", slog.String("remote_addr", remote))
	return NewSession(b), nil
}

// ServerConfig holds security configuration for the SMTP server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	TLSConfig      *tls.Config
}

// NewSecureServer creates a new SMTP server with security settings
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	} else {
		s.MaxMessageBytes = DefaultMaxMessageSize
	}

	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	} else {
		s.MaxRecipients = DefaultMaxRecipients
	}

	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	} else {
		s.ReadTimeout = DefaultReadTimeout
	}

	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	} else {
		s.WriteTimeout = DefaultWriteTimeout
	}

	// Disable insecure authentication by default
	s.AllowInsecureAuth = cfg.AllowInsecure

	if cfg.TLSConfig != nil {
		s.TLSConfig = cfg.TLSConfig
	}

	// Set max line length to prevent buffer overflow attacks
	s.MaxLineLength = DefaultMaxLineLength

	return s
}

// LoadTLSConfig builds a STARTTLS configuration from a certificate pair.
// Empty paths mean plaintext only.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load SMTP TLS key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
