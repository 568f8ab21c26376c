package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// GuildXPTotal is one row of the guild leaderboard.
type GuildXPTotal struct {
	GuildID   uint   `json:"guild_id"`
	GuildName string `json:"guild_name"`
	ClassName string `json:"class_name"`
	TotalXP   int64  `json:"total_xp"`
}

// LeaderboardRepository runs the read-only ranking queries.
type LeaderboardRepository interface {
	TopStudents(ctx context.Context, limit int) ([]models.Student, error)
	GuildTotals(ctx context.Context) ([]GuildXPTotal, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository constructs a leaderboard repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

// TopStudents orders by XP descending, ties broken by id ascending.
func (r *leaderboardRepository) TopStudents(ctx context.Context, limit int) ([]models.Student, error) {
	query := r.db.WithContext(ctx).
		Preload("Guild").
		Preload("Guild.Class").
		Order("xp DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *leaderboardRepository) GuildTotals(ctx context.Context) ([]GuildXPTotal, error) {
	var totals []GuildXPTotal
	err := r.db.WithContext(ctx).Model(&models.Guild{}).
		Select("guilds.id AS guild_id, guilds.name AS guild_name, COALESCE(classes.name, '') AS class_name, COALESCE(SUM(students.xp), 0) AS total_xp").
		Joins("JOIN students ON students.guild_id = guilds.id").
		Joins("LEFT JOIN classes ON classes.id = guilds.class_id").
		Group("guilds.id, guilds.name, classes.name").
		Order("total_xp DESC, guild_id ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}
