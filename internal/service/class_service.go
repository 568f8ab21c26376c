package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

var (
	// ErrClassNotFound indicates the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassNameTaken indicates a class with the same name already exists.
	ErrClassNameTaken = errors.New("class name already in use")
)

// ClassService manages classes, the top of the containment tree.
type ClassService interface {
	Create(ctx context.Context, req dto.ClassCreateRequest) (dto.ClassResponse, error)
	GetByID(ctx context.Context, id uint) (dto.ClassResponse, error)
	List(ctx context.Context) ([]dto.ClassResponse, error)
	Update(ctx context.Context, id uint, req dto.ClassUpdateRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
	History(ctx context.Context, id uint) ([]dto.HistoryEntryResponse, error)
}

type classService struct {
	classes   repository.ClassRepository
	history   repository.HistoryRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService constructs a class service.
func NewClassService(
	classes repository.ClassRepository,
	history repository.HistoryRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ClassService {
	return &classService{
		classes:   classes,
		history:   history,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) Create(ctx context.Context, req dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	// Name collisions are detected case-insensitively.
	if _, err := s.classes.GetByName(ctx, req.Name); err == nil {
		return dto.ClassResponse{}, ErrClassNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		Name: strings.TrimSpace(req.Name),
		Year: req.Year,
	}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Str("name", class.Name).Msg("class created")
	return dto.NewClassResponse(class), nil
}

func (s *classService) GetByID(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Update(ctx context.Context, id uint, req dto.ClassUpdateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}

	if _, err := s.classes.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.Update(ctx, id, updates)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) Delete(ctx context.Context, id uint) error {
	if err := s.classes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	s.logger.Info().Uint("class_id", id).Msg("class deleted with full cascade")
	return nil
}

// History returns the merged ledger of every student in the class, oldest
// first.
func (s *classService) History(ctx context.Context, id uint) ([]dto.HistoryEntryResponse, error) {
	if _, err := s.classes.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	entries, err := s.history.ListByClassID(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewHistoryEntryResponseSlice(entries), nil
}
