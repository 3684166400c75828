package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"gorm.io/gorm"
)

// ReturnPolicy decides what a repeated MarkReturned does to returned_at
type ReturnPolicy int

const (
	// ReturnedAtFirstWrite keeps the first returned_at; later calls match no row
	ReturnedAtFirstWrite ReturnPolicy = iota
	// ReturnedAtRefresh overwrites returned_at on every call
	ReturnedAtRefresh
)

// ParseReturnPolicy maps a config value to a ReturnPolicy
func ParseReturnPolicy(s string) (ReturnPolicy, bool) {
	switch s {
	case "", "first-write":
		return ReturnedAtFirstWrite, true
	case "refresh":
		return ReturnedAtRefresh, true
	default:
		return ReturnedAtFirstWrite, false
	}
}

// VoicemailRepository defines the interface for voicemail data access.
// Every operation is scoped to an owner account.
type VoicemailRepository interface {
	ListActive(ctx context.Context, ownerID string) ([]models.Voicemail, error)
	Create(ctx context.Context, ownerID string, input models.VoicemailInput) (string, error)
	// Delete and MarkReturned report whether a row changed
	Delete(ctx context.Context, ownerID, id string) (bool, error)
	MarkReturned(ctx context.Context, ownerID, id string) (bool, error)
}

// VoicemailOption configures a voicemail repository
type VoicemailOption func(*voicemailRepository)

// WithReturnPolicy sets the MarkReturned idempotence policy
func WithReturnPolicy(p ReturnPolicy) VoicemailOption {
	return func(r *voicemailRepository) {
		r.returnPolicy = p
	}
}

// WithClock overrides the time source used for returned_at
func WithClock(now func() time.Time) VoicemailOption {
	return func(r *voicemailRepository) {
		r.now = now
	}
}

// voicemailRepository implements VoicemailRepository using GORM
type voicemailRepository struct {
	db           *gorm.DB
	returnPolicy ReturnPolicy
	now          func() time.Time
}

// NewVoicemailRepository creates a new VoicemailRepository instance
func NewVoicemailRepository(db *gorm.DB, opts ...VoicemailOption) VoicemailRepository {
	r := &voicemailRepository{
		db:           db,
		returnPolicy: ReturnedAtFirstWrite,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListActive returns the owner's unreturned voicemails, most recent call first
func (r *voicemailRepository) ListActive(ctx context.Context, ownerID string) ([]models.Voicemail, error) {
	voicemails := make([]models.Voicemail, 0)
	if !isValidID(ownerID) {
		return voicemails, nil
	}

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND returned = ?", ownerID, false).
		Order("date_time DESC").
		Order("created_at DESC").
		Order("id").
		Find(&voicemails)
	if result.Error != nil {
		return nil, classifyError("failed to list voicemails", result.Error)
	}
	return voicemails, nil
}

// Create inserts a new unreturned voicemail for the owner and returns its ID.
// An unknown owner surfaces as ErrConstraintViolation.
func (r *voicemailRepository) Create(ctx context.Context, ownerID string, input models.VoicemailInput) (string, error) {
	if !isValidID(ownerID) {
		return "", fmt.Errorf("failed to create voicemail: %w: owner %q is not an account ID", ErrConstraintViolation, ownerID)
	}

	owner := ownerID
	voicemail := &models.Voicemail{
		OwnerID:        &owner,
		FromName:       input.FromName,
		ToName:         input.ToName,
		PhoneNumber:    input.PhoneNumber,
		MessageContent: input.MessageContent,
		DateTime:       input.DateTime.UTC(),
		TakenBy:        input.TakenBy,
		Returned:       false,
		ReturnedAt:     nil,
	}

	if err := r.db.WithContext(ctx).Omit("Owner").Create(voicemail).Error; err != nil {
		return "", classifyError("failed to create voicemail", err)
	}
	return voicemail.ID, nil
}

// Delete removes the voicemail matching both id and owner.
// Matching nothing is not an error.
func (r *voicemailRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	if !isValidID(ownerID) || !isValidID(id) {
		return false, nil
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Voicemail{})
	if result.Error != nil {
		return false, classifyError("failed to delete voicemail", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkReturned flags the voicemail matching both id and owner as returned.
// Matching nothing is not an error. Under ReturnedAtFirstWrite an already
// returned voicemail does not match.
func (r *voicemailRepository) MarkReturned(ctx context.Context, ownerID, id string) (bool, error) {
	if !isValidID(ownerID) || !isValidID(id) {
		return false, nil
	}

	query := r.db.WithContext(ctx).
		Model(&models.Voicemail{}).
		Where("id = ? AND owner_id = ?", id, ownerID)
	if r.returnPolicy == ReturnedAtFirstWrite {
		query = query.Where("returned = ?", false)
	}

	result := query.Updates(map[string]interface{}{
		"returned":    true,
		"returned_at": r.now().UTC(),
	})
	if result.Error != nil {
		return false, classifyError("failed to mark voicemail as returned", result.Error)
	}
	return result.RowsAffected > 0, nil
}
