package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/willow-go-api/internal/models"
)

func TestLeaderboardRepositoryTopStudentsOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaderboardRepository(db)

	students := []models.Student{
		{Name: "Carla", XP: 300, Level: 4},
		{Name: "Davi", XP: 500, Level: 6},
		{Name: "Elisa", XP: 300, Level: 4},
	}
	for i := range students {
		require.NoError(t, db.Create(&students[i]).Error)
	}

	top, err := repo.TopStudents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	require.Equal(t, "Davi", top[0].Name)
	// Tie on XP resolves by lowest id first.
	require.Equal(t, "Carla", top[1].Name)
	require.Equal(t, "Elisa", top[2].Name)

	top, err = repo.TopStudents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
}

func TestLeaderboardRepositoryGuildTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaderboardRepository(db)

	class := models.Class{Name: "Turma C", Year: 2025}
	require.NoError(t, db.Create(&class).Error)

	alpha := models.Guild{Name: "Alpha", ClassID: &class.ID}
	beta := models.Guild{Name: "Beta", ClassID: &class.ID}
	empty := models.Guild{Name: "Gamma", ClassID: &class.ID}
	require.NoError(t, db.Create(&alpha).Error)
	require.NoError(t, db.Create(&beta).Error)
	require.NoError(t, db.Create(&empty).Error)

	members := []models.Student{
		{Name: "A1", GuildID: &alpha.ID, XP: 100, Level: 2},
		{Name: "A2", GuildID: &alpha.ID, XP: 50, Level: 1},
		{Name: "B1", GuildID: &beta.ID, XP: 400, Level: 5},
	}
	for i := range members {
		require.NoError(t, db.Create(&members[i]).Error)
	}

	totals, err := repo.GuildTotals(context.Background())
	require.NoError(t, err)
	// Guilds without members carry no XP and are omitted.
	require.Len(t, totals, 2)
	require.Equal(t, "Beta", totals[0].GuildName)
	require.Equal(t, int64(400), totals[0].TotalXP)
	require.Equal(t, "Alpha", totals[1].GuildName)
	require.Equal(t, int64(150), totals[1].TotalXP)
	require.Equal(t, "Turma C", totals[0].ClassName)
}

func TestHistoryRepositoryListByClassID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)

	class := models.Class{Name: "Turma D", Year: 2025}
	require.NoError(t, db.Create(&class).Error)
	guild := models.Guild{Name: "Omega", ClassID: &class.ID}
	require.NoError(t, db.Create(&guild).Error)

	inClass := models.Student{Name: "Fabi", GuildID: &guild.ID, Level: 1}
	loner := models.Student{Name: "Gil", Level: 1}
	require.NoError(t, db.Create(&inClass).Error)
	require.NoError(t, db.Create(&loner).Error)

	entries := []models.HistoryEntry{
		{StudentID: inClass.ID, TransactionType: models.TransactionXPGainActivity, XPDelta: 20},
		{StudentID: loner.ID, TransactionType: models.TransactionXPGainActivity, XPDelta: 30},
		{StudentID: inClass.ID, TransactionType: models.TransactionXPPenalty, XPDelta: -5},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	got, err := repo.ListByClassID(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, entry := range got {
		require.Equal(t, inClass.ID, entry.StudentID)
	}
}
