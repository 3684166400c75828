package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Voicemail is one logged phone message.
//
// ReturnedAt is non-nil exactly when Returned is true. Everything except the
// returned pair is fixed at insertion.
type Voicemail struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        *string    `gorm:"type:uuid;index" json:"-"`
	FromName       string     `gorm:"not null" json:"from_name"`
	ToName         string     `gorm:"not null" json:"to_name"`
	PhoneNumber    string     `gorm:"not null" json:"phone_number"`
	MessageContent string     `gorm:"not null" json:"message_content"`
	DateTime       time.Time  `gorm:"not null;index" json:"date_time"`
	TakenBy        string     `gorm:"not null" json:"taken_by"`
	Returned       bool       `gorm:"not null;default:false" json:"returned"`
	ReturnedAt     *time.Time `json:"returned_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Owner *Account `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Voicemail
func (Voicemail) TableName() string {
	return "voicemails"
}

// BeforeCreate assigns a random UUID when the caller left ID empty
func (v *Voicemail) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// VoicemailInput carries the caller-supplied fields of a new voicemail
type VoicemailInput struct {
	FromName       string
	ToName         string
	PhoneNumber    string
	MessageContent string
	DateTime       time.Time
	TakenBy        string
}
