package dto

import (
	"time"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// StudentCreateRequest describes the payload for registering a student.
// The guild is referenced by name; class membership always derives from it.
type StudentCreateRequest struct {
	Name      string `json:"name" validate:"required,min=2"`
	Nickname  string `json:"nickname"`
	GuildName string `json:"guild_name"`
}

// StudentUpdateRequest describes a manual student update. XP, points and
// academic score changes produce adjustment entries in the history ledger,
// tagged with the given reason.
type StudentUpdateRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=2"`
	Nickname      *string  `json:"nickname"`
	GuildID       *uint    `json:"guild_id"`
	XP            *int     `json:"xp" validate:"omitempty,gte=0"`
	TotalPoints   *int     `json:"total_points"`
	AcademicScore *float64 `json:"academic_score"`
	Reason        string   `json:"reason"`
}

// StudentResponse is the serialized student, with guild and class names
// denormalized at the query layer.
type StudentResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Nickname      string    `json:"nickname"`
	GuildID       *uint     `json:"guild_id"`
	GuildName     string    `json:"guild_name,omitempty"`
	ClassName     string    `json:"class_name,omitempty"`
	XP            int       `json:"xp"`
	Level         int       `json:"level"`
	TotalPoints   int       `json:"total_points"`
	AcademicScore float64   `json:"academic_score"`
	Badges        []string  `json:"badges"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewStudentResponse converts a model into a DTO. Guild and class names are
// filled from the preloaded associations when present.
func NewStudentResponse(model models.Student) StudentResponse {
	response := StudentResponse{
		ID:            model.ID,
		Name:          model.Name,
		Nickname:      model.Nickname,
		GuildID:       model.GuildID,
		XP:            model.XP,
		Level:         model.Level,
		TotalPoints:   model.TotalPoints,
		AcademicScore: model.AcademicScore,
		Badges:        model.BadgeList(),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	if model.Guild != nil {
		response.GuildName = model.Guild.Name
		if model.Guild.Class != nil {
			response.ClassName = model.Guild.Class.Name
		}
	}

	return response
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}

	return responses
}
