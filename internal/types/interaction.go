package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interaction marks a chatroom as joined by a user. Joined chatrooms are
// excluded from candidacy.
type Interaction struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string    `gorm:"not null;index;column:user_id" json:"user_id"`
	ChatroomID        string    `gorm:"not null;index;column:chatroom_id" json:"chatroom_id"`
	SatisfactionScore float64   `gorm:"not null;column:satisfaction_score" json:"satisfaction_score"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (Interaction) TableName() string {
	return "interaction"
}

func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
