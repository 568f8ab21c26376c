package models

import "time"

// HistoryEntry is one record of the append-only reward ledger. Entries are
// never updated or deleted except when their student is removed.
type HistoryEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentID       uint      `gorm:"not null;index" json:"student_id"`
	TransactionType string    `gorm:"size:64;not null" json:"transaction_type"`
	XPDelta         int       `gorm:"not null;default:0" json:"xp_delta"`
	PointsDelta     float64   `gorm:"not null;default:0" json:"points_delta"`
	Reason          string    `gorm:"type:text" json:"reason"`
	ReferenceEntity string    `gorm:"size:64" json:"reference_entity"`
	ReferenceID     *uint     `json:"reference_id"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

const (
	// TransactionXPGainActivity records XP granted for an activity or quest.
	TransactionXPGainActivity = "xp_gain_activity"
	// TransactionXPPenalty records an individual XP deduction.
	TransactionXPPenalty = "xp_penalty"
	// TransactionGuildPenalty records an XP deduction applied guild-wide.
	TransactionGuildPenalty = "guild_penalty"
	// TransactionAcademicPointsGain records academic score gained from a quest.
	TransactionAcademicPointsGain = "academic_points_gain"
	// TransactionBadgeAward records a manually awarded badge.
	TransactionBadgeAward = "badge_award"
	// TransactionXPAdjustment records a manual XP correction.
	TransactionXPAdjustment = "xp_adjustment"
	// TransactionPointsAdjustment records a manual total points correction.
	TransactionPointsAdjustment = "points_adjustment"
	// TransactionAcademicAdjustment records a manual academic score correction.
	TransactionAcademicAdjustment = "academic_adjustment"
)
