package model

import "time"

// Admin is a dashboard account. Password holds a bcrypt hash, never
// the plaintext credential.
type Admin struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Email     string    `json:"email" gorm:"type:varchar(255);unique;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
}
