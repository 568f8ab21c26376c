package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

func newLeaderboardFixture(t *testing.T) (*gorm.DB, *leaderboardService, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	db := setupServiceDB(t)
	svc := NewLeaderboardService(repository.NewLeaderboardRepository(db), redisClient, time.Minute, 10, zerolog.Nop())

	return db, svc, mini
}

func TestLeaderboardServiceTopStudentsCaching(t *testing.T) {
	db, svc, _ := newLeaderboardFixture(t)
	ctx := context.Background()

	guild := models.Guild{Name: "Topaz"}
	require.NoError(t, db.Create(&guild).Error)
	createStudent(t, db, "First", 300, &guild.ID)
	createStudent(t, db, "Second", 200, &guild.ID)
	createStudent(t, db, "Third", 100, &guild.ID)

	first, err := svc.TopStudents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	require.Equal(t, "First", first.Entries[0].Name)
	require.Equal(t, "Second", first.Entries[1].Name)
	require.Equal(t, "Topaz", first.Entries[0].GuildName)

	// Mutate the database behind the cache; the cached ranking must win.
	require.NoError(t, db.Model(&models.Student{}).Where("name = ?", "Third").Update("xp", 999).Error)

	cached, err := svc.TopStudents(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "First", cached.Entries[0].Name)

	// After invalidation the new ranking is served.
	svc.Invalidate(ctx)
	fresh, err := svc.TopStudents(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "Third", fresh.Entries[0].Name)
}

func TestLeaderboardServiceDefaultLimit(t *testing.T) {
	db, svc, _ := newLeaderboardFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		createStudent(t, db, "S", i*10, nil)
	}

	response, err := svc.TopStudents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, response.Entries, 10)
}

func TestLeaderboardServiceGuildTotals(t *testing.T) {
	db, svc, _ := newLeaderboardFixture(t)
	ctx := context.Background()

	class := models.Class{Name: "6B"}
	require.NoError(t, db.Create(&class).Error)
	strong := models.Guild{Name: "Strong", ClassID: &class.ID}
	weak := models.Guild{Name: "Weak", ClassID: &class.ID}
	require.NoError(t, db.Create(&strong).Error)
	require.NoError(t, db.Create(&weak).Error)

	createStudent(t, db, "A", 120, &strong.ID)
	createStudent(t, db, "B", 80, &strong.ID)
	createStudent(t, db, "C", 90, &weak.ID)

	response, err := svc.GuildTotals(ctx)
	require.NoError(t, err)
	require.Len(t, response.Entries, 2)
	require.Equal(t, "Strong", response.Entries[0].GuildName)
	require.Equal(t, int64(200), response.Entries[0].TotalXP)
	require.Equal(t, "6B", response.Entries[0].ClassName)
}

func TestLeaderboardServiceWorksWithoutCache(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewLeaderboardService(repository.NewLeaderboardRepository(db), nil, time.Minute, 10, zerolog.Nop())

	createStudent(t, db, "Solo", 50, nil)

	response, err := svc.TopStudents(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, response.Entries, 1)

	svc.Invalidate(context.Background())
}
