package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/gamification"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the requested student does not exist.
	ErrStudentNotFound = errors.New("student not found")
)

// StudentService manages student records. Manual stat edits go through the
// reward repository so the ledger stays complete.
type StudentService interface {
	Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	GetByID(ctx context.Context, id uint) (dto.StudentResponse, error)
	List(ctx context.Context) ([]dto.StudentResponse, error)
	SearchByName(ctx context.Context, name string) ([]dto.StudentResponse, error)
	Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type studentService struct {
	students  repository.StudentRepository
	guilds    repository.GuildRepository
	rewards   repository.RewardRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs a student service.
func NewStudentService(
	students repository.StudentRepository,
	guilds repository.GuildRepository,
	rewards repository.RewardRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		students:  students,
		guilds:    guilds,
		rewards:   rewards,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		Name:     strings.TrimSpace(req.Name),
		Nickname: strings.TrimSpace(req.Nickname),
		Level:    gamification.LevelForXP(0),
	}
	if err := student.SetBadges(nil); err != nil {
		return dto.StudentResponse{}, err
	}

	if strings.TrimSpace(req.GuildName) != "" {
		guild, err := s.guilds.GetByName(ctx, req.GuildName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentResponse{}, ErrGuildNotFound
			}
			return dto.StudentResponse{}, err
		}
		student.GuildID = &guild.ID
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Str("name", student.Name).Msg("student created")
	return s.response(ctx, student.ID)
}

func (s *studentService) GetByID(ctx context.Context, id uint) (dto.StudentResponse, error) {
	return s.response(ctx, id)
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *studentService) SearchByName(ctx context.Context, name string) ([]dto.StudentResponse, error) {
	students, err := s.students.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

// Update applies profile edits directly and stat edits through the reward
// repository, recording one adjustment entry per changed stat.
func (s *studentService) Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Nickname != nil {
		student.Nickname = strings.TrimSpace(*req.Nickname)
	}
	if req.GuildID != nil {
		if _, err := s.guilds.GetByID(ctx, *req.GuildID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentResponse{}, ErrGuildNotFound
			}
			return dto.StudentResponse{}, err
		}
		student.GuildID = req.GuildID
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "manual adjustment"
	}

	var entries []models.HistoryEntry
	if req.XP != nil && *req.XP != student.XP {
		delta := *req.XP - student.XP
		student.XP = *req.XP
		student.Level = gamification.LevelForXP(student.XP)
		if err := student.SetBadges(gamification.MergeBadges(student.BadgeList(), gamification.TierBadges(student.XP))); err != nil {
			return dto.StudentResponse{}, err
		}
		entries = append(entries, models.HistoryEntry{
			TransactionType: models.TransactionXPAdjustment,
			XPDelta:         delta,
			Reason:          reason,
			ReferenceEntity: "student",
			ReferenceID:     &student.ID,
		})
	}
	if req.TotalPoints != nil && *req.TotalPoints != student.TotalPoints {
		delta := *req.TotalPoints - student.TotalPoints
		student.TotalPoints = *req.TotalPoints
		entries = append(entries, models.HistoryEntry{
			TransactionType: models.TransactionPointsAdjustment,
			PointsDelta:     float64(delta),
			Reason:          reason,
			ReferenceEntity: "student",
			ReferenceID:     &student.ID,
		})
	}
	if req.AcademicScore != nil && *req.AcademicScore != student.AcademicScore {
		delta := *req.AcademicScore - student.AcademicScore
		student.AcademicScore = *req.AcademicScore
		entries = append(entries, models.HistoryEntry{
			TransactionType: models.TransactionAcademicAdjustment,
			PointsDelta:     delta,
			Reason:          reason,
			ReferenceEntity: "student",
			ReferenceID:     &student.ID,
		})
	}

	if err := s.rewards.SaveStudentWithHistory(ctx, &student, entries); err != nil {
		return dto.StudentResponse{}, err
	}

	return s.response(ctx, student.ID)
}

func (s *studentService) Delete(ctx context.Context, id uint) error {
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	s.logger.Info().Uint("student_id", id).Msg("student deleted")
	return nil
}

func (s *studentService) response(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetWithGuild(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}
