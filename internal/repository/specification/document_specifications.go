package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy filters documents by owner.
type OwnedBy struct {
	OwnerID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

// ForDocument filters child records (collaborators, comments, revisions)
// by their parent document.
type ForDocument struct {
	DocumentID uuid.UUID
}

func (s ForDocument) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// ForUser filters child records by user.
type ForUser struct {
	UserID uuid.UUID
}

func (s ForUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByEmail filters users by email.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// AccessibleBy matches documents the user owns or collaborates on.
type AccessibleBy struct {
	UserID uuid.UUID
}

func (s AccessibleBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"owner_id = ? OR id IN (SELECT document_id FROM collaborators WHERE user_id = ?)",
		s.UserID, s.UserID,
	)
}
