package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
)

// MockIdentityResolver implements services.IdentityResolver
type MockIdentityResolver struct {
	mock.Mock
}

// CreateAccount inserts a new account
func (m *MockIdentityResolver) CreateAccount(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ResolveOrCreateAccount resolves a client-held identifier
func (m *MockIdentityResolver) ResolveOrCreateAccount(ctx context.Context, candidateID string) (services.Resolution, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).(services.Resolution), args.Error(1)
}

// DeleteAccount removes an account
func (m *MockIdentityResolver) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// MockVoicemailService implements services.VoicemailService
type MockVoicemailService struct {
	mock.Mock
}

// ListActive returns the owner's unreturned voicemails
func (m *MockVoicemailService) ListActive(ctx context.Context, ownerID string) ([]models.Voicemail, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Voicemail), args.Error(1)
}

// Create stores a voicemail for the owner
func (m *MockVoicemailService) Create(ctx context.Context, ownerID string, input models.VoicemailInput, source string) (string, error) {
	args := m.Called(ctx, ownerID, input, source)
	return args.String(0), args.Error(1)
}

// Delete removes the owner's voicemail
func (m *MockVoicemailService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MarkReturned flags the owner's voicemail as returned
func (m *MockVoicemailService) MarkReturned(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}
