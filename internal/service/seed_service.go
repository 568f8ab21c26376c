package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads demo data in bulk: quests keyed by code, classes keyed
// by name.
type SeedService interface {
	SeedQuests(ctx context.Context, token string, items []models.Quest) (int64, error)
	SeedClasses(ctx context.Context, token string, items []models.Class) (int64, error)
}

type seedService struct {
	quests  repository.QuestRepository
	classes repository.ClassRepository
	enabled bool
	token   string
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(quests repository.QuestRepository, classes repository.ClassRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		quests:  quests,
		classes: classes,
		enabled: enabled,
		token:   token,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedQuests upserts the given quests by code. Existing quests get their
// name, description and reward values replaced.
func (s *seedService) SeedQuests(ctx context.Context, token string, items []models.Quest) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	normalized := normalizeQuests(items)
	affected, err := s.quests.UpsertBatch(ctx, normalized)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("quests seeded")
	return affected, nil
}

// SeedClasses upserts the given classes by name. Existing classes get
// their year replaced.
func (s *seedService) SeedClasses(ctx context.Context, token string, items []models.Class) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	normalized := normalizeClasses(items)
	affected, err := s.classes.UpsertBatch(ctx, normalized)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("classes seeded")
	return affected, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtleConstantTimeCompare(expected, strings.TrimSpace(token))
}

func subtleConstantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}

func normalizeClasses(items []models.Class) []models.Class {
	normalized := make([]models.Class, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		normalized = append(normalized, item)
	}
	return normalized
}

func normalizeQuests(items []models.Quest) []models.Quest {
	normalized := make([]models.Quest, 0, len(items))
	for _, item := range items {
		item.Code = strings.TrimSpace(item.Code)
		item.Name = strings.TrimSpace(item.Name)
		if item.Code == "" {
			continue
		}
		normalized = append(normalized, item)
	}
	return normalized
}
