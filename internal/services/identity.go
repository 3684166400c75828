package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/logger"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/metrics"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/repository"
)

const (
	// UnassignedAccountID is the placeholder a client holds before it has an account
	UnassignedAccountID = "Loading..."

	// ErrorMarkerPrefix starts any client-held value that records a failed assignment
	ErrorMarkerPrefix = "Error"
)

// LookupErrorPolicy decides what ResolveOrCreateAccount does when the
// existence check itself fails
type LookupErrorPolicy int

const (
	// LookupErrorCreateNew issues a fresh account instead of failing
	LookupErrorCreateNew LookupErrorPolicy = iota
	// LookupErrorPropagate returns the storage error to the caller
	LookupErrorPropagate
)

// ParseLookupErrorPolicy maps a config value to a LookupErrorPolicy
func ParseLookupErrorPolicy(s string) (LookupErrorPolicy, bool) {
	switch s {
	case "", "create":
		return LookupErrorCreateNew, true
	case "propagate":
		return LookupErrorPropagate, true
	default:
		return LookupErrorCreateNew, false
	}
}

func (p LookupErrorPolicy) String() string {
	if p == LookupErrorPropagate {
		return "propagate"
	}
	return "create"
}

// Resolution is the outcome of resolving a client-held identifier
type Resolution struct {
	AccountID string
	// Created is set when AccountID was issued by this call
	Created bool
	// Fallback is set when the lookup failed and a new account was issued instead
	Fallback bool
}

// IdentityResolver maps client-held identifiers to existing accounts
type IdentityResolver interface {
	// CreateAccount inserts a new account and returns its ID
	CreateAccount(ctx context.Context) (string, error)

	// ResolveOrCreateAccount returns the presented account when it exists,
	// otherwise a newly created one. An empty candidate means none was presented.
	ResolveOrCreateAccount(ctx context.Context, candidateID string) (Resolution, error)

	// DeleteAccount removes an account and all of its voicemails
	DeleteAccount(ctx context.Context, accountID string) error
}

// IdentityResolverConfig holds configuration for the identity resolver
type IdentityResolverConfig struct {
	OnLookupError LookupErrorPolicy
}

// identityResolver implements IdentityResolver
type identityResolver struct {
	accounts repository.AccountRepository
	config   IdentityResolverConfig
	metrics  *metrics.Metrics
	security *logger.SecurityLogger
	logger   *slog.Logger
}

// NewIdentityResolver creates a new IdentityResolver instance.
// metrics and security may be nil.
func NewIdentityResolver(accounts repository.AccountRepository, config IdentityResolverConfig, m *metrics.Metrics, security *logger.SecurityLogger, log *slog.Logger) IdentityResolver {
	if log == nil {
		log = slog.Default()
	}
	return &identityResolver{
		accounts: accounts,
		config:   config,
		metrics:  m,
		security: security,
		logger:   log,
	}
}

// CreateAccount inserts one account and returns its generated ID
func (s *identityResolver) CreateAccount(ctx context.Context) (string, error) {
	account, err := s.accounts.Create(ctx)
	if err != nil {
		s.metrics.StoreError("create_account")
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	s.metrics.AccountCreated()
	return account.ID, nil
}

// ResolveOrCreateAccount implements the resolution rules for client-held identifiers
func (s *identityResolver) ResolveOrCreateAccount(ctx context.Context, candidateID string) (Resolution, error) {
	candidateID = strings.TrimSpace(candidateID)

	if !IsAssigned(candidateID) {
		return s.issue(ctx, false)
	}

	// Braced, urn and upper-case spellings name the same account as the
	// canonical form; only the canonical form is looked up and returned.
	parsed, err := uuid.Parse(candidateID)
	if err != nil {
		s.logger.Debug("presented account id is malformed, issuing a new one")
		return s.issue(ctx, false)
	}
	candidateID = parsed.String()

	exists, err := s.accounts.Exists(ctx, candidateID)
	if err != nil {
		s.metrics.StoreError("account_exists")
		if s.security != nil {
			s.security.IdentityLookupFailed(candidateID, err)
		}
		if s.config.OnLookupError == LookupErrorPropagate {
			return Resolution{}, fmt.Errorf("failed to look up account: %w", err)
		}
		s.metrics.IdentityFallback()
		return s.issue(ctx, true)
	}
	if exists {
		return Resolution{AccountID: candidateID}, nil
	}

	s.logger.Debug("presented account not found, issuing a new one",
		slog.String("account", logger.MaskID(candidateID)))
	return s.issue(ctx, false)
}

// DeleteAccount removes the account; its voicemails go with it
func (s *identityResolver) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		if !apperrors.IsNotFound(err) {
			s.metrics.StoreError("delete_account")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (s *identityResolver) issue(ctx context.Context, fallback bool) (Resolution, error) {
	id, err := s.CreateAccount(ctx)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{AccountID: id, Created: true, Fallback: fallback}, nil
}

// IsAssigned reports whether a client-held value can name an account at all
func IsAssigned(candidateID string) bool {
	return candidateID != "" &&
		candidateID != UnassignedAccountID &&
		!strings.HasPrefix(candidateID, ErrorMarkerPrefix)
}
