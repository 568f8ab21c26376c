package models

import "time"

// Guild is a team of students inside a class. A guild may be temporarily
// unassigned from any class.
type Guild struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	ClassID   *uint     `gorm:"index" json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Class     *Class    `json:"class,omitempty"`
	Students  []Student `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"students,omitempty"`
}
