package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an identity known to the session provider.
type User struct {
	ID          string    `bson:"_id" json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email       string    `bson:"email" json:"email" gorm:"uniqueIndex;not null"`
	DisplayName string    `bson:"display_name" json:"display_name"`
	Password    string    `bson:"password,omitempty" json:"-" gorm:"not null"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}
