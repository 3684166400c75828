package smtp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/logger"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/validator"
)

var (
	errBadRecipient = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 1},
		Message:      "Invalid recipient address",
	}
	errUnknownDomain = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 2},
		Message:      "Domain not handled here",
	}
	errUnknownAccount = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 1},
		Message:      "Mailbox not found",
	}
	errTemporary = &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Temporary error",
	}
	errNoRecipients = &smtp.SMTPError{
		Code:         503,
		EnhancedCode: smtp.EnhancedCode{5, 5, 1},
		Message:      "No recipients specified",
	}
	errUnparseable = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "Failed to parse email",
	}
	errRejected = &smtp.SMTPError{
		Code:         554,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "Voicemail rejected",
	}
)

// Session implements the go-smtp Session interface
type Session struct {
	backend  *Backend
	from     string
	accounts []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:  backend,
		accounts: make([]string, 0),
	}
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	return nil
}

// Rcpt handles the RCPT TO command.
// The local part must name an existing account under the configured domain.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	localPart, domainName, err := parseEmailAddress(to)
	if err != nil {
		return errBadRecipient
	}
	if domainName != s.backend.domain {
		return errUnknownDomain
	}
	parsed, err := uuid.Parse(localPart)
	if err != nil {
		return errUnknownAccount
	}
	localPart = parsed.String()

	ctx, cancel := context.WithTimeout(context.Background(), s.backend.storeTimeout)
	defer cancel()

	exists, err := s.backend.accounts.Exists(ctx, localPart)
	if err != nil {
		s.backend.logger.Error("failed to check recipient account",
			slog.String("account", logger.MaskID(localPart)),
			slog.Any("error", err))
		return errTemporary
	}
	if !exists {
		return errUnknownAccount
	}

	for _, account := range s.accounts {
		if account == localPart {
			return nil
		}
	}
	s.accounts = append(s.accounts, localPart)
	s.backend.logger.Debug("RCPT TO", slog.String("account", logger.MaskID(localPart)))
	return nil
}

// Data handles the DATA command and logs one voicemail per recipient account
func (s *Session) Data(r io.Reader) error {
	if len(s.accounts) == 0 {
		return errNoRecipients
	}

	parsed, err := ParseEmail(r)
	if err != nil {
		s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		return errUnparseable
	}
	if parsed.SenderEmail == "" {
		parsed.SenderEmail = s.from
	}

	input := parsed.VoicemailInput(s.backend.takenBy, s.backend.now())

	ctx, cancel := context.WithTimeout(context.Background(), s.backend.storeTimeout)
	defer cancel()

	var failures []error
	for _, account := range s.accounts {
		id, err := s.backend.voicemails.Create(ctx, account, input, services.SourceSMTP)
		if err != nil {
			s.backend.logger.Error("failed to log emailed voicemail",
				slog.String("account", logger.MaskID(account)),
				slog.Any("error", err))
			failures = append(failures, err)
			continue
		}
		s.backend.logger.Info("voicemail received by email",
			slog.String("account", logger.MaskID(account)),
			slog.String("voicemail_id", id))
	}

	// Partial delivery is still delivery; only refuse when nothing was stored
	if len(failures) == len(s.accounts) {
		return deliveryError(errors.Join(failures...))
	}
	return nil
}

// deliveryError picks a permanent or temporary reply for a failed delivery
func deliveryError(err error) *smtp.SMTPError {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return &smtp.SMTPError{
			Code:         errRejected.Code,
			EnhancedCode: errRejected.EnhancedCode,
			Message:      fmt.Sprintf("%s: %s", errRejected.Message, firstLine(err)),
		}
	case errors.Is(err, apperrors.ErrConstraintViolation):
		return errUnknownAccount
	default:
		return errTemporary
	}
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.accounts = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}

// parseEmailAddress parses an email address into local part and domain
func parseEmailAddress(address string) (localPart, domain string, err error) {
	// Remove angle brackets if present
	address = strings.TrimPrefix(address, "<")
	address = strings.TrimSuffix(address, ">")
	address = strings.TrimSpace(address)

	if err := validator.ValidateEmail(address); err != nil {
		return "", "", fmt.Errorf("invalid email address %q: %w", address, err)
	}

	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}

	localPart = strings.ToLower(parts[0])
	domain = strings.ToLower(parts[1])

	if localPart == "" || domain == "" {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}

	return localPart, domain, nil
}
