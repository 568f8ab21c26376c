package dto

import (
	"time"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// HistoryEntryResponse is one serialized ledger record.
type HistoryEntryResponse struct {
	ID              uint      `json:"id"`
	StudentID       uint      `json:"student_id"`
	TransactionType string    `json:"transaction_type"`
	XPDelta         int       `json:"xp_delta"`
	PointsDelta     float64   `json:"points_delta"`
	Reason          string    `json:"reason"`
	ReferenceEntity string    `json:"reference_entity"`
	ReferenceID     *uint     `json:"reference_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewHistoryEntryResponse converts a model into a DTO.
func NewHistoryEntryResponse(model models.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:              model.ID,
		StudentID:       model.StudentID,
		TransactionType: model.TransactionType,
		XPDelta:         model.XPDelta,
		PointsDelta:     model.PointsDelta,
		Reason:          model.Reason,
		ReferenceEntity: model.ReferenceEntity,
		ReferenceID:     model.ReferenceID,
		CreatedAt:       model.CreatedAt,
	}
}

// NewHistoryEntryResponseSlice converts a slice of models into DTOs.
func NewHistoryEntryResponseSlice(entries []models.HistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewHistoryEntryResponse(entry))
	}

	return responses
}
