package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              string                      `gorm:"uniqueIndex;not null;column:user_id" json:"user_id"`
	Interests           datatypes.JSONSlice[string] `gorm:"column:interests" json:"interests"`
	LevelOfPressure     int                         `gorm:"not null;column:level_of_pressure" json:"level_of_pressure"`
	PlatformCreditScore int                         `gorm:"not null;column:platform_credit_score" json:"platform_credit_score"`
	CreatedAt           time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
