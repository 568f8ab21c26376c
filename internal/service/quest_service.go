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
	// ErrQuestNotFound indicates the requested quest does not exist.
	ErrQuestNotFound = errors.New("quest not found")
	// ErrQuestCodeTaken indicates a quest with the same code already exists.
	ErrQuestCodeTaken = errors.New("quest code already in use")
)

// QuestService manages the quest catalog. Quests are addressed by their
// stable code; reward value updates never rewrite past completions.
type QuestService interface {
	Create(ctx context.Context, req dto.QuestCreateRequest) (dto.QuestResponse, error)
	GetByCode(ctx context.Context, code string) (dto.QuestResponse, error)
	List(ctx context.Context) ([]dto.QuestResponse, error)
	UpdateByCode(ctx context.Context, code string, req dto.QuestUpdateRequest) (dto.QuestResponse, error)
}

type questService struct {
	quests    repository.QuestRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuestService constructs a quest service.
func NewQuestService(quests repository.QuestRepository, validate *validator.Validate, logger zerolog.Logger) QuestService {
	return &questService{
		quests:    quests,
		validator: validate,
		logger:    logger.With().Str("component", "quest_service").Logger(),
	}
}

func (s *questService) Create(ctx context.Context, req dto.QuestCreateRequest) (dto.QuestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuestResponse{}, err
	}

	code := strings.TrimSpace(req.Code)
	if _, err := s.quests.GetByCode(ctx, code); err == nil {
		return dto.QuestResponse{}, ErrQuestCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.QuestResponse{}, err
	}

	quest := models.Quest{
		Code:               code,
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		XPOnCompletion:     req.XPOnCompletion,
		PointsOnCompletion: req.PointsOnCompletion,
	}
	if err := s.quests.Create(ctx, &quest); err != nil {
		return dto.QuestResponse{}, err
	}

	s.logger.Info().Str("code", quest.Code).Msg("quest created")
	return dto.NewQuestResponse(quest), nil
}

func (s *questService) GetByCode(ctx context.Context, code string) (dto.QuestResponse, error) {
	quest, err := s.quests.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestResponse{}, ErrQuestNotFound
		}
		return dto.QuestResponse{}, err
	}

	return dto.NewQuestResponse(quest), nil
}

func (s *questService) List(ctx context.Context) ([]dto.QuestResponse, error) {
	quests, err := s.quests.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewQuestResponseSlice(quests), nil
}

func (s *questService) UpdateByCode(ctx context.Context, code string, req dto.QuestUpdateRequest) (dto.QuestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuestResponse{}, err
	}

	code = strings.TrimSpace(code)
	if _, err := s.quests.GetByCode(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestResponse{}, ErrQuestNotFound
		}
		return dto.QuestResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.XPOnCompletion != nil {
		updates["xp_on_completion"] = *req.XPOnCompletion
	}
	if req.PointsOnCompletion != nil {
		updates["points_on_completion"] = *req.PointsOnCompletion
	}
	if len(updates) == 0 {
		return s.GetByCode(ctx, code)
	}

	quest, err := s.quests.UpdateByCode(ctx, code, updates)
	if err != nil {
		return dto.QuestResponse{}, err
	}

	return dto.NewQuestResponse(quest), nil
}
