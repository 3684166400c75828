package services

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/metrics"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/phone"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/repository"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/validator"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/websocket"
)

// Intake sources, used as the metrics label
const (
	SourceAPI  = "api"
	SourceSMTP = "smtp"
)

// Broadcaster notifies connected clients that an account's list changed
type Broadcaster interface {
	BroadcastVoicemailEvent(accountID string, event websocket.MessageType, voicemailID string)
}

// VoicemailService is the voicemail log used by the HTTP and SMTP front ends
type VoicemailService interface {
	ListActive(ctx context.Context, ownerID string) ([]models.Voicemail, error)
	Create(ctx context.Context, ownerID string, input models.VoicemailInput, source string) (string, error)
	Delete(ctx context.Context, ownerID, id string) error
	MarkReturned(ctx context.Context, ownerID, id string) error
}

// voicemailService implements VoicemailService
type voicemailService struct {
	repo        repository.VoicemailRepository
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewVoicemailService creates a new VoicemailService instance.
// broadcaster and metrics may be nil.
func NewVoicemailService(repo repository.VoicemailRepository, broadcaster Broadcaster, m *metrics.Metrics, log *slog.Logger) VoicemailService {
	if log == nil {
		log = slog.Default()
	}
	return &voicemailService{
		repo:        repo,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      log,
	}
}

// ListActive returns the owner's unreturned voicemails, newest call first
func (s *voicemailService) ListActive(ctx context.Context, ownerID string) ([]models.Voicemail, error) {
	voicemails, err := s.repo.ListActive(ctx, ownerID)
	if err != nil {
		s.metrics.StoreError("list_active")
		return nil, err
	}
	return voicemails, nil
}

// Create validates the input, normalizes the phone number and stores the voicemail
func (s *voicemailService) Create(ctx context.Context, ownerID string, input models.VoicemailInput, source string) (string, error) {
	input, err := validator.ValidateVoicemailInput(input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	input.PhoneNumber = phone.Canonical(input.PhoneNumber)

	id, err := s.repo.Create(ctx, ownerID, input)
	if err != nil {
		s.metrics.StoreError("create")
		return "", err
	}

	s.metrics.VoicemailCreated(source)
	s.notify(ownerID, websocket.EventVoicemailCreated, id)
	s.logger.Debug("voicemail recorded",
		slog.String("voicemail_id", id),
		slog.String("source", source))
	return id, nil
}

// Delete removes the owner's voicemail; a missing or foreign id is not an error.
// Only an actual removal is counted and broadcast.
func (s *voicemailService) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		s.metrics.StoreError("delete")
		return err
	}
	if deleted {
		s.metrics.VoicemailDeleted()
		s.notify(ownerID, websocket.EventVoicemailDeleted, id)
	}
	return nil
}

// MarkReturned flags the owner's voicemail as returned; a missing or foreign id is not an error.
// Only a row that changed is counted and broadcast.
func (s *voicemailService) MarkReturned(ctx context.Context, ownerID, id string) error {
	changed, err := s.repo.MarkReturned(ctx, ownerID, id)
	if err != nil {
		s.metrics.StoreError("mark_returned")
		return err
	}
	if changed {
		s.metrics.VoicemailReturned()
		s.notify(ownerID, websocket.EventVoicemailReturned, id)
	}
	return nil
}

func (s *voicemailService) notify(ownerID string, event websocket.MessageType, id string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastVoicemailEvent(ownerID, event, id)
}
