package models

import "time"

// Quest is a learning activity with fixed rewards granted on completion.
// Reward values may be edited later; history entries keep the value that was
// in effect at the time of each completion.
type Quest struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Code               string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name               string    `gorm:"size:255;not null" json:"name"`
	Description        string    `gorm:"type:text" json:"description"`
	XPOnCompletion     int       `gorm:"not null;default:0" json:"xp_on_completion"`
	PointsOnCompletion float64   `gorm:"not null;default:0" json:"points_on_completion"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
