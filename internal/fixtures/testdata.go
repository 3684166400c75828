// Package fixtures provides builders and an in-memory database for tests.
package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/database"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect("file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// CreateAccount inserts an account directly and returns its ID
func CreateAccount(t testing.TB, db *gorm.DB) string {
	t.Helper()

	account := &models.Account{}
	require.NoError(t, db.Create(account).Error)
	return account.ID
}

// VoicemailInputBuilder creates test VoicemailInput values with fluent API
type VoicemailInputBuilder struct {
	input models.VoicemailInput
}

// NewVoicemailInputBuilder creates a builder with the canonical Alice-to-Bob message
func NewVoicemailInputBuilder() *VoicemailInputBuilder {
	return &VoicemailInputBuilder{
		input: models.VoicemailInput{
			FromName:       "Alice",
			ToName:         "Bob",
			PhoneNumber:    "5551234567",
			MessageContent: "Call back",
			DateTime:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			TakenBy:        "Carol",
		},
	}
}

// WithFromName sets the caller name
func (b *VoicemailInputBuilder) WithFromName(name string) *VoicemailInputBuilder {
	b.input.FromName = name
	return b
}

// WithToName sets the recipient name
func (b *VoicemailInputBuilder) WithToName(name string) *VoicemailInputBuilder {
	b.input.ToName = name
	return b
}

// WithPhoneNumber sets the callback number
func (b *VoicemailInputBuilder) WithPhoneNumber(phone string) *VoicemailInputBuilder {
	b.input.PhoneNumber = phone
	return b
}

// WithMessage sets the message content
func (b *VoicemailInputBuilder) WithMessage(message string) *VoicemailInputBuilder {
	b.input.MessageContent = message
	return b
}

// WithDateTime sets when the call happened
func (b *VoicemailInputBuilder) WithDateTime(t time.Time) *VoicemailInputBuilder {
	b.input.DateTime = t
	return b
}

// WithTakenBy sets who took the message
func (b *VoicemailInputBuilder) WithTakenBy(name string) *VoicemailInputBuilder {
	b.input.TakenBy = name
	return b
}

// Build returns the constructed VoicemailInput
func (b *VoicemailInputBuilder) Build() models.VoicemailInput {
	return b.input
}

// VoicemailBuilder creates stored Voicemail values for handler and service tests
type VoicemailBuilder struct {
	voicemail models.Voicemail
}

// NewVoicemailBuilder creates a new VoicemailBuilder with sensible defaults
func NewVoicemailBuilder() *VoicemailBuilder {
	input := NewVoicemailInputBuilder().Build()
	owner := uuid.NewString()
	return &VoicemailBuilder{
		voicemail: models.Voicemail{
			ID:             uuid.NewString(),
			OwnerID:        &owner,
			FromName:       input.FromName,
			ToName:         input.ToName,
			PhoneNumber:    input.PhoneNumber,
			MessageContent: input.MessageContent,
			DateTime:       input.DateTime,
			TakenBy:        input.TakenBy,
			CreatedAt:      time.Now(),
		},
	}
}

// WithID sets the voicemail ID
func (b *VoicemailBuilder) WithID(id string) *VoicemailBuilder {
	b.voicemail.ID = id
	return b
}

// WithOwnerID sets the owning account
func (b *VoicemailBuilder) WithOwnerID(ownerID string) *VoicemailBuilder {
	b.voicemail.OwnerID = &ownerID
	return b
}

// WithDateTime sets when the call happened
func (b *VoicemailBuilder) WithDateTime(t time.Time) *VoicemailBuilder {
	b.voicemail.DateTime = t
	return b
}

// WithReturnedAt marks the voicemail returned at t
func (b *VoicemailBuilder) WithReturnedAt(t time.Time) *VoicemailBuilder {
	b.voicemail.Returned = true
	b.voicemail.ReturnedAt = &t
	return b
}

// Build returns the constructed Voicemail
func (b *VoicemailBuilder) Build() *models.Voicemail {
	return &b.voicemail
}

// BuildValue returns the constructed Voicemail as a value (not pointer)
func (b *VoicemailBuilder) BuildValue() models.Voicemail {
	return b.voicemail
}
