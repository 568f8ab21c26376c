package dto

import (
	"time"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// ClassCreateRequest describes the payload for creating a class.
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Year int    `json:"year" validate:"omitempty,gte=2000"`
}

// ClassUpdateRequest describes a partial class update.
type ClassUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2"`
	Year *int    `json:"year" validate:"omitempty,gte=2000"`
}

// ClassResponse is the serialized class with its nested guilds.
type ClassResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Year      int             `json:"year"`
	Guilds    []GuildResponse `json:"guilds"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewClassResponse converts a model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	guilds := make([]GuildResponse, 0, len(model.Guilds))
	for _, guild := range model.Guilds {
		guilds = append(guilds, NewGuildResponse(guild))
	}

	return ClassResponse{
		ID:        model.ID,
		Name:      model.Name,
		Year:      model.Year,
		Guilds:    guilds,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewClassResponseSlice converts a slice of models into DTOs.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}

	return responses
}
