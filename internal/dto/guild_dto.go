package dto

import (
	"time"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// GuildCreateRequest describes the payload for creating a guild.
type GuildCreateRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	ClassID *uint  `json:"class_id"`
}

// GuildUpdateRequest describes a partial guild update. Moving the guild to
// another class implicitly migrates every member's class association.
type GuildUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	ClassID *uint   `json:"class_id"`
}

// GuildResponse is the serialized guild with its members.
type GuildResponse struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	ClassID   *uint             `json:"class_id"`
	ClassName string            `json:"class_name,omitempty"`
	Students  []StudentResponse `json:"students"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewGuildResponse converts a model into a DTO.
func NewGuildResponse(model models.Guild) GuildResponse {
	response := GuildResponse{
		ID:        model.ID,
		Name:      model.Name,
		ClassID:   model.ClassID,
		Students:  NewStudentResponseSlice(model.Students),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Class != nil {
		response.ClassName = model.Class.Name
	}

	return response
}

// NewGuildResponseSlice converts a slice of models into DTOs.
func NewGuildResponseSlice(guilds []models.Guild) []GuildResponse {
	responses := make([]GuildResponse, 0, len(guilds))
	for _, guild := range guilds {
		responses = append(responses, NewGuildResponse(guild))
	}

	return responses
}
