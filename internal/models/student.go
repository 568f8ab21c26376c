package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Student is a player in the gamification system. XP, level, points and
// badges are only mutated through the reward engine so every change is
// paired with a history entry.
type Student struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:255;not null;index" json:"name"`
	Nickname      string         `gorm:"size:255" json:"nickname"`
	GuildID       *uint          `gorm:"index" json:"guild_id"`
	XP            int            `gorm:"not null;default:0" json:"xp"`
	Level         int            `gorm:"not null;default:1" json:"level"`
	TotalPoints   int            `gorm:"not null;default:0" json:"total_points"`
	AcademicScore float64        `gorm:"not null;default:0" json:"academic_score"`
	Badges        datatypes.JSON `gorm:"type:json" json:"badges"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Guild         *Guild         `json:"guild,omitempty"`
}

// BadgeList decodes the stored badge set. An empty or malformed column
// yields an empty list rather than an error.
func (s Student) BadgeList() []string {
	if len(s.Badges) == 0 {
		return []string{}
	}
	var badges []string
	if err := json.Unmarshal(s.Badges, &badges); err != nil {
		return []string{}
	}
	return badges
}

// SetBadges encodes the badge set into the JSON column.
func (s *Student) SetBadges(badges []string) error {
	if badges == nil {
		badges = []string{}
	}
	encoded, err := json.Marshal(badges)
	if err != nil {
		return err
	}
	s.Badges = datatypes.JSON(encoded)
	return nil
}

// HasBadge reports whether the student already holds the named badge.
func (s Student) HasBadge(name string) bool {
	for _, badge := range s.BadgeList() {
		if badge == name {
			return true
		}
	}
	return false
}
