package model

import (
	"time"

	"github.com/google/uuid"
)

type Collaborator struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index:idx_collaborators_doc_user,unique"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index:idx_collaborators_doc_user,unique"`
	Role       string    `gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Collaborator) TableName() string {
	return "collaborators"
}
