package model

import "time"

// Project represents a completed or ongoing fabrication project shown
// in the portfolio section
type Project struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Category    string    `json:"category" gorm:"type:varchar(100);index"`
	Location    string    `json:"location" gorm:"type:varchar(255)"`
	Year        int       `json:"year"`
	Service     string    `json:"service" gorm:"type:varchar(255)"`
	Image       string    `json:"image" gorm:"type:varchar(512)"`
	Description string    `json:"description" gorm:"type:text"`
	ClientType  string    `json:"client_type" gorm:"type:varchar(100)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
