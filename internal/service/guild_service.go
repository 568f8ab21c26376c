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
	// ErrGuildNotFound indicates the requested guild does not exist.
	ErrGuildNotFound = errors.New("guild not found")
	// ErrGuildNameTaken indicates a guild with the same name already exists.
	ErrGuildNameTaken = errors.New("guild name already in use")
)

// GuildService manages guilds and their membership.
type GuildService interface {
	Create(ctx context.Context, req dto.GuildCreateRequest) (dto.GuildResponse, error)
	GetByID(ctx context.Context, id uint) (dto.GuildResponse, error)
	GetByName(ctx context.Context, name string) (dto.GuildResponse, error)
	List(ctx context.Context) ([]dto.GuildResponse, error)
	Update(ctx context.Context, id uint, req dto.GuildUpdateRequest) (dto.GuildResponse, error)
	Delete(ctx context.Context, id uint) error
	Members(ctx context.Context, id uint) ([]dto.StudentResponse, error)
}

type guildService struct {
	guilds    repository.GuildRepository
	classes   repository.ClassRepository
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGuildService constructs a guild service.
func NewGuildService(
	guilds repository.GuildRepository,
	classes repository.ClassRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) GuildService {
	return &guildService{
		guilds:    guilds,
		classes:   classes,
		students:  students,
		validator: validate,
		logger:    logger.With().Str("component", "guild_service").Logger(),
	}
}

func (s *guildService) Create(ctx context.Context, req dto.GuildCreateRequest) (dto.GuildResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GuildResponse{}, err
	}

	if _, err := s.guilds.GetByName(ctx, req.Name); err == nil {
		return dto.GuildResponse{}, ErrGuildNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.GuildResponse{}, err
	}

	if req.ClassID != nil {
		if _, err := s.classes.GetByID(ctx, *req.ClassID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.GuildResponse{}, ErrClassNotFound
			}
			return dto.GuildResponse{}, err
		}
	}

	guild := models.Guild{
		Name:    strings.TrimSpace(req.Name),
		ClassID: req.ClassID,
	}
	if err := s.guilds.Create(ctx, &guild); err != nil {
		return dto.GuildResponse{}, err
	}

	s.logger.Info().Uint("guild_id", guild.ID).Str("name", guild.Name).Msg("guild created")
	return s.response(ctx, guild.ID)
}

func (s *guildService) GetByID(ctx context.Context, id uint) (dto.GuildResponse, error) {
	return s.response(ctx, id)
}

func (s *guildService) GetByName(ctx context.Context, name string) (dto.GuildResponse, error) {
	guild, err := s.guilds.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GuildResponse{}, ErrGuildNotFound
		}
		return dto.GuildResponse{}, err
	}

	return dto.NewGuildResponse(guild), nil
}

func (s *guildService) List(ctx context.Context) ([]dto.GuildResponse, error) {
	guilds, err := s.guilds.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewGuildResponseSlice(guilds), nil
}

// Update edits the guild. Changing ClassID moves every member along with the
// guild, because class membership always derives from guild containment.
func (s *guildService) Update(ctx context.Context, id uint, req dto.GuildUpdateRequest) (dto.GuildResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GuildResponse{}, err
	}

	if _, err := s.guilds.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GuildResponse{}, ErrGuildNotFound
		}
		return dto.GuildResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ClassID != nil {
		if _, err := s.classes.GetByID(ctx, *req.ClassID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.GuildResponse{}, ErrClassNotFound
			}
			return dto.GuildResponse{}, err
		}
		updates["class_id"] = *req.ClassID
	}
	if len(updates) == 0 {
		return s.response(ctx, id)
	}

	guild, err := s.guilds.Update(ctx, id, updates)
	if err != nil {
		return dto.GuildResponse{}, err
	}

	return dto.NewGuildResponse(guild), nil
}

func (s *guildService) Delete(ctx context.Context, id uint) error {
	if err := s.guilds.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuildNotFound
		}
		return err
	}

	s.logger.Info().Uint("guild_id", id).Msg("guild deleted with full cascade")
	return nil
}

// Members lists the guild's students ordered by XP descending.
func (s *guildService) Members(ctx context.Context, id uint) ([]dto.StudentResponse, error) {
	if _, err := s.guilds.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, err
	}

	students, err := s.students.ListByGuildID(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *guildService) response(ctx context.Context, id uint) (dto.GuildResponse, error) {
	guild, err := s.guilds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GuildResponse{}, ErrGuildNotFound
		}
		return dto.GuildResponse{}, err
	}

	return dto.NewGuildResponse(guild), nil
}
