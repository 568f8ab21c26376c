package dto

import (
	"time"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// QuestCreateRequest describes the payload for adding a quest to the catalog.
type QuestCreateRequest struct {
	Code               string  `json:"code" validate:"required,min=1,max=64"`
	Name               string  `json:"name" validate:"required,min=2"`
	Description        string  `json:"description"`
	XPOnCompletion     int     `json:"xp_on_completion" validate:"gte=0"`
	PointsOnCompletion float64 `json:"points_on_completion" validate:"gte=0"`
}

// QuestUpdateRequest describes a partial quest update, addressed by code.
// Past completions are never recomputed when reward values change.
type QuestUpdateRequest struct {
	Name               *string  `json:"name" validate:"omitempty,min=2"`
	Description        *string  `json:"description"`
	XPOnCompletion     *int     `json:"xp_on_completion" validate:"omitempty,gte=0"`
	PointsOnCompletion *float64 `json:"points_on_completion" validate:"omitempty,gte=0"`
}

// QuestResponse is the serialized quest.
type QuestResponse struct {
	ID                 uint      `json:"id"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	XPOnCompletion     int       `json:"xp_on_completion"`
	PointsOnCompletion float64   `json:"points_on_completion"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewQuestResponse converts a model into a DTO.
func NewQuestResponse(model models.Quest) QuestResponse {
	return QuestResponse{
		ID:                 model.ID,
		Code:               model.Code,
		Name:               model.Name,
		Description:        model.Description,
		XPOnCompletion:     model.XPOnCompletion,
		PointsOnCompletion: model.PointsOnCompletion,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewQuestResponseSlice converts a slice of models into DTOs.
func NewQuestResponseSlice(quests []models.Quest) []QuestResponse {
	responses := make([]QuestResponse, 0, len(quests))
	for _, quest := range quests {
		responses = append(responses, NewQuestResponse(quest))
	}

	return responses
}
