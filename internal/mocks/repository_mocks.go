package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
)

// MockAccountRepository implements repository.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

// Create inserts a new account
func (m *MockAccountRepository) Create(ctx context.Context) (*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// Exists reports whether an account exists
func (m *MockAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Delete deletes an account by its ID
func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVoicemailRepository implements repository.VoicemailRepository
type MockVoicemailRepository struct {
	mock.Mock
}

// ListActive returns the owner's unreturned voicemails
func (m *MockVoicemailRepository) ListActive(ctx context.Context, ownerID string) ([]models.Voicemail, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Voicemail), args.Error(1)
}

// Create inserts a voicemail for the owner
func (m *MockVoicemailRepository) Create(ctx context.Context, ownerID string, input models.VoicemailInput) (string, error) {
	args := m.Called(ctx, ownerID, input)
	return args.String(0), args.Error(1)
}

// Delete removes the owner's voicemail
func (m *MockVoicemailRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}

// MarkReturned flags the owner's voicemail as returned
func (m *MockVoicemailRepository) MarkReturned(ctx context.Context, ownerID, id string) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}
