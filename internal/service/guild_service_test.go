package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

func newGuildService(t *testing.T) (*gorm.DB, GuildService) {
	t.Helper()

	db := setupServiceDB(t)
	svc := NewGuildService(
		repository.NewGuildRepository(db),
		repository.NewClassRepository(db),
		repository.NewStudentRepository(db),
		validator.New(),
		zerolog.Nop(),
	)

	return db, svc
}

func TestGuildServiceCreate(t *testing.T) {
	db, svc := newGuildService(t)
	ctx := context.Background()

	class := models.Class{Name: "8A"}
	require.NoError(t, db.Create(&class).Error)

	created, err := svc.Create(ctx, dto.GuildCreateRequest{Name: "Ametista", ClassID: &class.ID})
	require.NoError(t, err)
	require.Equal(t, "Ametista", created.Name)
	require.Equal(t, "8A", created.ClassName)

	_, err = svc.Create(ctx, dto.GuildCreateRequest{Name: "ametista"})
	require.ErrorIs(t, err, ErrGuildNameTaken)

	missing := uint(404)
	_, err = svc.Create(ctx, dto.GuildCreateRequest{Name: "Sem Turma", ClassID: &missing})
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestGuildServiceMembersOrderedByXP(t *testing.T) {
	db, svc := newGuildService(t)
	ctx := context.Background()

	guild := models.Guild{Name: "Quartzo"}
	require.NoError(t, db.Create(&guild).Error)
	createStudent(t, db, "Low", 10, &guild.ID)
	createStudent(t, db, "High", 90, &guild.ID)

	members, err := svc.Members(ctx, guild.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "High", members[0].Name)

	_, err = svc.Members(ctx, 404)
	require.ErrorIs(t, err, ErrGuildNotFound)
}

func TestGuildServiceUpdateMovesClass(t *testing.T) {
	db, svc := newGuildService(t)
	ctx := context.Background()

	old := models.Class{Name: "Old"}
	next := models.Class{Name: "Next"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&next).Error)
	guild := models.Guild{Name: "Movers", ClassID: &old.ID}
	require.NoError(t, db.Create(&guild).Error)

	updated, err := svc.Update(ctx, guild.ID, dto.GuildUpdateRequest{ClassID: &next.ID})
	require.NoError(t, err)
	require.Equal(t, "Next", updated.ClassName)
}

func TestClassServiceHistoryAndDelete(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewClassService(
		repository.NewClassRepository(db),
		repository.NewHistoryRepository(db),
		validator.New(),
		zerolog.Nop(),
	)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.ClassCreateRequest{Name: "9B", Year: 2026})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.ClassCreateRequest{Name: "9b"})
	require.ErrorIs(t, err, ErrClassNameTaken)

	guild := models.Guild{Name: "Historians", ClassID: &created.ID}
	require.NoError(t, db.Create(&guild).Error)
	student := createStudent(t, db, "H", 0, &guild.ID)
	require.NoError(t, db.Create(&models.HistoryEntry{StudentID: student.ID, TransactionType: models.TransactionXPGainActivity, XPDelta: 10}).Error)

	entries, err := svc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 10, entries[0].XPDelta)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrClassNotFound)

	var students int64
	require.NoError(t, db.Model(&models.Student{}).Count(&students).Error)
	require.Zero(t, students, "class delete cascades through guilds and students")
}

func TestClassServiceDeleteCascadeCounts(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewClassService(
		repository.NewClassRepository(db),
		repository.NewHistoryRepository(db),
		validator.New(),
		zerolog.Nop(),
	)
	ctx := context.Background()

	doomed, err := svc.Create(ctx, dto.ClassCreateRequest{Name: "Doomed"})
	require.NoError(t, err)
	survivor := models.Class{Name: "Survivor"}
	require.NoError(t, db.Create(&survivor).Error)

	quest := models.Quest{Code: "cascade", Name: "Cascade"}
	require.NoError(t, db.Create(&quest).Error)

	seedGuild := func(name string, classID uint) {
		guild := models.Guild{Name: name, ClassID: &classID}
		require.NoError(t, db.Create(&guild).Error)
		for i := 0; i < 3; i++ {
			student := createStudent(t, db, name, 0, &guild.ID)
			for j := 0; j < 2; j++ {
				enrollment := models.Enrollment{StudentID: student.ID, QuestID: quest.ID, Status: models.EnrollmentStatusStarted}
				require.NoError(t, db.Create(&enrollment).Error)
			}
			entry := models.HistoryEntry{StudentID: student.ID, TransactionType: models.TransactionXPGainActivity}
			require.NoError(t, db.Create(&entry).Error)
		}
	}
	seedGuild("Doomed A", doomed.ID)
	seedGuild("Doomed B", doomed.ID)
	seedGuild("Untouched", survivor.ID)

	require.NoError(t, svc.Delete(ctx, doomed.ID))

	count := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	require.Equal(t, int64(1), count(&models.Guild{}))
	require.Equal(t, int64(3), count(&models.Student{}))
	require.Equal(t, int64(6), count(&models.Enrollment{}))
	require.Equal(t, int64(3), count(&models.HistoryEntry{}))
}
