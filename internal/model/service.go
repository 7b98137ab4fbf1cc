package model

import (
	"encoding/json"
	"time"
)

// Service represents an individual offering within a segment
type Service struct {
	ID              uint      `json:"id" gorm:"primarykey"`
	Slug            string    `json:"slug" gorm:"type:varchar(255);unique;not null"`
	Title           string    `json:"title" gorm:"type:varchar(255);not null"`
	Tagline         string    `json:"tagline" gorm:"type:varchar(255)"`
	Category        string    `json:"category" gorm:"type:varchar(100);index"`
	Description     string    `json:"description" gorm:"type:text"`
	FullDescription string    `json:"full_description" gorm:"type:text"`
	Icon            string    `json:"icon" gorm:"type:varchar(100)"`
	ImageURL        string    `json:"image_url" gorm:"type:varchar(512)"`
	IsActive        bool      `json:"is_active"`
	DisplayOrder    int       `json:"display_order" gorm:"default:0"`
	SegmentID       *uint     `json:"segment_id" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Features       []ServiceFeature       `json:"features" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Specifications []ServiceSpecification `json:"specifications" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Benefits       []ServiceBenefit       `json:"benefits" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Applications   []ServiceApplication   `json:"applications" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
}

// NormalizeChildren replaces nil child slices with empty ones so a
// service with no child rows still serializes well-formed empty arrays.
func (s *Service) NormalizeChildren() {
	if s.Features == nil {
		s.Features = []ServiceFeature{}
	}
	if s.Specifications == nil {
		s.Specifications = []ServiceSpecification{}
	}
	if s.Benefits == nil {
		s.Benefits = []ServiceBenefit{}
	}
	if s.Applications == nil {
		s.Applications = []ServiceApplication{}
	}
}

// ServiceFeature is a titled child row of a service. Serialized as the
// bare payload object; row bookkeeping stays internal.
type ServiceFeature struct {
	ID           uint   `json:"-" gorm:"primarykey"`
	ServiceID    uint   `json:"-" gorm:"index;not null"`
	Title        string `json:"title" gorm:"type:varchar(255);not null"`
	Description  string `json:"description" gorm:"type:text"`
	Icon         string `json:"icon" gorm:"type:varchar(100)"`
	DisplayOrder int    `json:"-" gorm:"default:0"`
}

// ServiceSpecification is an ordered plain-string child row
type ServiceSpecification struct {
	ID           uint   `gorm:"primarykey"`
	ServiceID    uint   `gorm:"index;not null"`
	Value        string `gorm:"type:text;not null"`
	DisplayOrder int    `gorm:"default:0"`
}

// MarshalJSON serializes a specification as its bare string so the
// service payload carries a plain ordered string list
func (s ServiceSpecification) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// ServiceBenefit is an ordered plain-string child row
type ServiceBenefit struct {
	ID           uint   `gorm:"primarykey"`
	ServiceID    uint   `gorm:"index;not null"`
	Value        string `gorm:"type:text;not null"`
	DisplayOrder int    `gorm:"default:0"`
}

func (b ServiceBenefit) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Value)
}

// ServiceApplication is an ordered plain-string child row
type ServiceApplication struct {
	ID           uint   `gorm:"primarykey"`
	ServiceID    uint   `gorm:"index;not null"`
	Value        string `gorm:"type:text;not null"`
	DisplayOrder int    `gorm:"default:0"`
}

func (a ServiceApplication) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value)
}
