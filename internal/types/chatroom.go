package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Chatroom struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ChatroomID string                      `gorm:"uniqueIndex;not null;column:chatroom_id" json:"chatroom_id"`
	Name       string                      `gorm:"not null;column:name" json:"name"`
	Topics     datatypes.JSONSlice[string] `gorm:"column:topics" json:"topics"`
	VibeScore  int                         `gorm:"not null;column:vibe_score" json:"vibe_score"`
	CreatedAt  time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Chatroom) TableName() string {
	return "chatroom"
}

func (c *Chatroom) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
