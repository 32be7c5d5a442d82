package models

import (
	"time"
)

// Profile holds the role claim for one identity. It is written once at
// sign-up and only read afterwards.
type Profile struct {
	UserID      string    `bson:"user_id" json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	Role        string    `bson:"role" json:"role" gorm:"type:varchar(20);not null;default:'citizen'"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
