package dto

import (
	"time"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// EnrollmentCreateRequest describes the payload for enrolling a student.
type EnrollmentCreateRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
	QuestID   uint `json:"quest_id" validate:"required,gt=0"`
}

// EnrollmentCompleteRequest carries the final score for a quest completion.
type EnrollmentCompleteRequest struct {
	Score int `json:"score" validate:"gte=0,lte=100"`
}

// BulkEnrollRequest enrolls every student of a guild or class in a quest.
// Exactly one of GuildName or ClassID must be set.
type BulkEnrollRequest struct {
	QuestID   uint   `json:"quest_id" validate:"required,gt=0"`
	GuildName string `json:"guild_name"`
	ClassID   *uint  `json:"class_id"`
}

// BulkCompleteRequest completes the quest for every open enrollment of a
// guild, with one shared score.
type BulkCompleteRequest struct {
	QuestID   uint   `json:"quest_id" validate:"required,gt=0"`
	GuildName string `json:"guild_name" validate:"required"`
	Score     int    `json:"score" validate:"gte=0,lte=100"`
}

// EnrollmentResponse is the serialized enrollment.
type EnrollmentResponse struct {
	ID           uint      `json:"id"`
	StudentID    uint      `json:"student_id"`
	StudentName  string    `json:"student_name,omitempty"`
	QuestID      uint      `json:"quest_id"`
	QuestCode    string    `json:"quest_code,omitempty"`
	QuestName    string    `json:"quest_name,omitempty"`
	Status       string    `json:"status"`
	ScoreInQuest int       `json:"score_in_quest"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:           model.ID,
		StudentID:    model.StudentID,
		StudentName:  model.Student.Name,
		QuestID:      model.QuestID,
		QuestCode:    model.Quest.Code,
		QuestName:    model.Quest.Name,
		Status:       model.Status,
		ScoreInQuest: model.ScoreInQuest,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewEnrollmentResponseSlice converts a slice of models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
