package models

import "time"

// Class groups guilds of students for a school year.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Guilds    []Guild   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"guilds,omitempty"`
}
