package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

const (
	studentLeaderboardKeyPrefix = "leaderboard:students"
	guildLeaderboardKey         = "leaderboard:guilds"
)

// LeaderboardService serves rankings with a read-through Redis cache. The
// reward engine invalidates the cache after every committed transition.
type LeaderboardService interface {
	TopStudents(ctx context.Context, limit int) (dto.LeaderboardResponse, error)
	GuildTotals(ctx context.Context) (dto.GuildLeaderboardResponse, error)
	Invalidate(ctx context.Context)
}

type leaderboardService struct {
	repo         repository.LeaderboardRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	defaultLimit int
	logger       zerolog.Logger
}

// NewLeaderboardService constructs a leaderboard service. Cache is optional;
// without it every call hits the database.
func NewLeaderboardService(
	repo repository.LeaderboardRepository,
	cache *redis.Client,
	ttl time.Duration,
	defaultLimit int,
	logger zerolog.Logger,
) *leaderboardService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}

	return &leaderboardService{
		repo:         repo,
		cache:        cache,
		cacheTTL:     ttl,
		defaultLimit: defaultLimit,
		logger:       logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func (s *leaderboardService) TopStudents(ctx context.Context, limit int) (dto.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	cacheKey := fmt.Sprintf("%s:%d", studentLeaderboardKeyPrefix, limit)
	tracer := otel.Tracer("github.com/noah-isme/willow-go-api/internal/service/leaderboard")
	ctx, span := tracer.Start(ctx, "leaderboard.top_students")
	span.SetAttributes(attribute.Int("leaderboard.limit", limit))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.LeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("leaderboard.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read student leaderboard cache")
			span.RecordError(err)
		}
	}

	students, err := s.repo.TopStudents(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "top_students_query_failed")
		return dto.LeaderboardResponse{}, err
	}

	response := dto.LeaderboardResponse{Entries: dto.NewStudentResponseSlice(students)}
	span.SetAttributes(attribute.Int("leaderboard.entries", len(response.Entries)))

	s.store(ctx, cacheKey, response)
	return response, nil
}

func (s *leaderboardService) GuildTotals(ctx context.Context) (dto.GuildLeaderboardResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/willow-go-api/internal/service/leaderboard")
	ctx, span := tracer.Start(ctx, "leaderboard.guild_totals")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, guildLeaderboardKey).Result()
		if err == nil {
			var response dto.GuildLeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("leaderboard.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read guild leaderboard cache")
			span.RecordError(err)
		}
	}

	totals, err := s.repo.GuildTotals(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "guild_totals_query_failed")
		return dto.GuildLeaderboardResponse{}, err
	}

	response := dto.NewGuildLeaderboardResponse(totals)
	span.SetAttributes(attribute.Int("leaderboard.entries", len(response.Entries)))

	s.store(ctx, guildLeaderboardKey, response)
	return response, nil
}

// Invalidate drops every cached ranking. Failures only log; the cache will
// repopulate on the next read.
func (s *leaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	keys, err := s.cache.Keys(ctx, studentLeaderboardKeyPrefix+":*").Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list leaderboard cache keys")
		keys = nil
	}
	keys = append(keys, guildLeaderboardKey)

	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}

func (s *leaderboardService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
	}
}
