package models

import "time"

// Enrollment tracks a student's attempt at a quest.
type Enrollment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	QuestID      uint      `gorm:"not null;index" json:"quest_id"`
	Status       string    `gorm:"size:32;not null;default:started" json:"status"`
	ScoreInQuest int       `gorm:"not null;default:0" json:"score_in_quest"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Student      Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student,omitempty"`
	Quest        Quest     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"quest,omitempty"`
}

const (
	// EnrollmentStatusStarted is the initial state of every enrollment.
	EnrollmentStatusStarted = "started"
	// EnrollmentStatusInProgress marks an enrollment the student is working on.
	EnrollmentStatusInProgress = "in_progress"
	// EnrollmentStatusCompleted is terminal; rewards have been granted.
	EnrollmentStatusCompleted = "completed"
	// EnrollmentStatusFailed is terminal without rewards.
	EnrollmentStatusFailed = "failed"
)

// IsOpen reports whether the enrollment can still be completed.
func (e Enrollment) IsOpen() bool {
	return e.Status == EnrollmentStatusStarted || e.Status == EnrollmentStatusInProgress
}
