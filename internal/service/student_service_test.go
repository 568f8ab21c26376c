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

func newStudentService(t *testing.T) (*gorm.DB, StudentService, repository.HistoryRepository) {
	t.Helper()

	db := setupServiceDB(t)
	svc := NewStudentService(
		repository.NewStudentRepository(db),
		repository.NewGuildRepository(db),
		repository.NewRewardRepository(db),
		validator.New(),
		zerolog.Nop(),
	)

	return db, svc, repository.NewHistoryRepository(db)
}

func TestStudentServiceCreateWithGuildName(t *testing.T) {
	db, svc, _ := newStudentService(t)
	ctx := context.Background()

	class := models.Class{Name: "7C"}
	require.NoError(t, db.Create(&class).Error)
	guild := models.Guild{Name: "Onix", ClassID: &class.ID}
	require.NoError(t, db.Create(&guild).Error)

	response, err := svc.Create(ctx, dto.StudentCreateRequest{Name: "Maria", GuildName: "onix"})
	require.NoError(t, err)
	require.Equal(t, "Maria", response.Name)
	require.Equal(t, "Onix", response.GuildName)
	require.Equal(t, "7C", response.ClassName)
	require.Equal(t, 1, response.Level)
	require.Empty(t, response.Badges)

	_, err = svc.Create(ctx, dto.StudentCreateRequest{Name: "Pedro", GuildName: "missing"})
	require.ErrorIs(t, err, ErrGuildNotFound)
}

func TestStudentServiceSearchByName(t *testing.T) {
	db, svc, _ := newStudentService(t)
	ctx := context.Background()

	for _, name := range []string{"Ana Clara", "Mariana", "Bruno"} {
		student := models.Student{Name: name, Level: 1}
		require.NoError(t, student.SetBadges(nil))
		require.NoError(t, db.Create(&student).Error)
	}

	results, err := svc.SearchByName(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestStudentServiceUpdateRecordsAdjustments(t *testing.T) {
	db, svc, history := newStudentService(t)
	ctx := context.Background()

	student := createStudent(t, db, "Joao", 50, nil)

	newXP := 150
	newPoints := 30
	response, err := svc.Update(ctx, student.ID, dto.StudentUpdateRequest{
		XP:          &newXP,
		TotalPoints: &newPoints,
		Reason:      "teacher correction",
	})
	require.NoError(t, err)
	require.Equal(t, 150, response.XP)
	require.Equal(t, 2, response.Level)
	require.Equal(t, 30, response.TotalPoints)
	require.Equal(t, []string{"Explorador Iniciante"}, response.Badges)

	entries, err := history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.TransactionXPAdjustment, entries[0].TransactionType)
	require.Equal(t, 100, entries[0].XPDelta)
	require.Equal(t, "teacher correction", entries[0].Reason)
	require.Equal(t, "student", entries[0].ReferenceEntity)
	require.NotNil(t, entries[0].ReferenceID)
	require.Equal(t, student.ID, *entries[0].ReferenceID)
	require.Equal(t, models.TransactionPointsAdjustment, entries[1].TransactionType)
	require.InDelta(t, 30.0, entries[1].PointsDelta, 0.001, "ledger records the numeric points delta")
	require.Zero(t, entries[1].XPDelta)
	require.Equal(t, "student", entries[1].ReferenceEntity)
}

func TestStudentServiceUpdateProfileOnly(t *testing.T) {
	db, svc, history := newStudentService(t)
	ctx := context.Background()

	student := createStudent(t, db, "Lia", 0, nil)

	newName := "Lia Souza"
	response, err := svc.Update(ctx, student.ID, dto.StudentUpdateRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "Lia Souza", response.Name)

	entries, err := history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Empty(t, entries, "profile edits do not touch the ledger")
}

func TestStudentServiceDeleteCascades(t *testing.T) {
	db, svc, _ := newStudentService(t)
	ctx := context.Background()

	student := createStudent(t, db, "Gone", 0, nil)
	quest := models.Quest{Code: "q", Name: "Quest"}
	require.NoError(t, db.Create(&quest).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, QuestID: quest.ID, Status: models.EnrollmentStatusStarted}).Error)
	require.NoError(t, db.Create(&models.HistoryEntry{StudentID: student.ID, TransactionType: models.TransactionXPGainActivity}).Error)

	require.NoError(t, svc.Delete(ctx, student.ID))

	var enrollments, entries int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("student_id = ?", student.ID).Count(&enrollments).Error)
	require.NoError(t, db.Model(&models.HistoryEntry{}).Where("student_id = ?", student.ID).Count(&entries).Error)
	require.Zero(t, enrollments)
	require.Zero(t, entries)

	require.ErrorIs(t, svc.Delete(ctx, student.ID), ErrStudentNotFound)
}

func TestHistoryServiceListByStudentName(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewHistoryService(repository.NewHistoryRepository(db), repository.NewStudentRepository(db), zerolog.Nop())
	ctx := context.Background()

	ana := createStudent(t, db, "Ana", 0, nil)
	mariana := createStudent(t, db, "Mariana", 0, nil)
	bruno := createStudent(t, db, "Bruno", 0, nil)

	for _, studentID := range []uint{ana.ID, mariana.ID, bruno.ID} {
		entry := models.HistoryEntry{StudentID: studentID, TransactionType: models.TransactionXPGainActivity, XPDelta: 10}
		require.NoError(t, db.Create(&entry).Error)
	}

	entries, err := svc.ListByStudentName(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, entries, 2, "matches Ana and Mariana, not Bruno")

	_, err = svc.ListByStudentName(ctx, "nobody")
	require.ErrorIs(t, err, ErrStudentNotFound)
}
