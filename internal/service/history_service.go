package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

// HistoryService reads the append-only reward ledger.
type HistoryService interface {
	ListByStudentID(ctx context.Context, studentID uint) ([]dto.HistoryEntryResponse, error)
	ListByStudentName(ctx context.Context, name string) ([]dto.HistoryEntryResponse, error)
}

type historyService struct {
	history  repository.HistoryRepository
	students repository.StudentRepository
	logger   zerolog.Logger
}

// NewHistoryService constructs a history service.
func NewHistoryService(history repository.HistoryRepository, students repository.StudentRepository, logger zerolog.Logger) HistoryService {
	return &historyService{
		history:  history,
		students: students,
		logger:   logger.With().Str("component", "history_service").Logger(),
	}
}

// ListByStudentID returns the student's ledger, oldest first.
func (s *historyService) ListByStudentID(ctx context.Context, studentID uint) ([]dto.HistoryEntryResponse, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	entries, err := s.history.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewHistoryEntryResponseSlice(entries), nil
}

// ListByStudentName resolves students by partial name match and returns
// their combined ledger, oldest first.
func (s *historyService) ListByStudentName(ctx context.Context, name string) ([]dto.HistoryEntryResponse, error) {
	students, err := s.students.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, ErrStudentNotFound
	}

	ids := make([]uint, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}

	entries, err := s.history.ListByStudentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return dto.NewHistoryEntryResponseSlice(entries), nil
}
