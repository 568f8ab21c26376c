package service

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

// setupServiceDB opens a fresh in-memory database per test. The DSN embeds
// the test name so gorm's pooled connections keep seeing the same database
// without leaking state across tests.
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Class{},
		&models.Guild{},
		&models.Student{},
		&models.Quest{},
		&models.Enrollment{},
		&models.HistoryEntry{},
	))

	return db
}

type rewardFixture struct {
	db      *gorm.DB
	svc     RewardService
	history repository.HistoryRepository
	cache   *recordingInvalidator
	events  *recordingPublisher
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingInvalidator) Invalidate(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []RewardEvent
}

func (r *recordingPublisher) PublishReward(event RewardEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) published() []RewardEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RewardEvent(nil), r.events...)
}

func newRewardFixture(t *testing.T) rewardFixture {
	t.Helper()

	db := setupServiceDB(t)
	cache := &recordingInvalidator{}
	events := &recordingPublisher{}

	svc := NewRewardService(
		repository.NewStudentRepository(db),
		repository.NewGuildRepository(db),
		repository.NewQuestRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewRewardRepository(db),
		validator.New(),
		cache,
		events,
		zerolog.Nop(),
	)

	return rewardFixture{
		db:      db,
		svc:     svc,
		history: repository.NewHistoryRepository(db),
		cache:   cache,
		events:  events,
	}
}

func createStudent(t *testing.T, db *gorm.DB, name string, xp int, guildID *uint) models.Student {
	t.Helper()

	student := models.Student{Name: name, GuildID: guildID, XP: xp, Level: 1}
	require.NoError(t, student.SetBadges(nil))
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestRewardServiceGrantXP(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()
	student := createStudent(t, f.db, "Alice", 180, nil)

	response, err := f.svc.GrantXP(ctx, student.ID, dto.XPGrantRequest{Amount: 50, Reason: "quiz bonus"})
	require.NoError(t, err)
	require.Equal(t, 230, response.XP)
	require.Equal(t, 3, response.Level)
	require.Equal(t, []string{"Explorador Iniciante", "Explorador Bronze"}, response.Badges)

	entries, err := f.history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.TransactionXPGainActivity, entries[0].TransactionType)
	require.Equal(t, 50, entries[0].XPDelta)
	require.Equal(t, "quiz bonus", entries[0].Reason)

	require.Equal(t, 1, f.cache.count())
	published := f.events.published()
	require.Len(t, published, 1)
	require.Equal(t, student.ID, published[0].StudentID)
}

func TestRewardServiceGrantXPStudentMissing(t *testing.T) {
	f := newRewardFixture(t)

	_, err := f.svc.GrantXP(context.Background(), 999, dto.XPGrantRequest{Amount: 10})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestRewardServicePenalizeXPClampsAtZero(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()
	student := createStudent(t, f.db, "Bob", 40, nil)

	response, err := f.svc.PenalizeXP(ctx, student.ID, dto.XPPenaltyRequest{Amount: 50, Reason: "late"})
	require.NoError(t, err)
	require.Equal(t, 0, response.XP)
	require.Equal(t, 1, response.Level)

	entries, err := f.history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, -40, entries[0].XPDelta, "ledger records the applied delta, not the requested amount")
}

func TestRewardServicePenaltyKeepsEarnedBadges(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()
	student := createStudent(t, f.db, "Carol", 0, nil)

	_, err := f.svc.GrantXP(ctx, student.ID, dto.XPGrantRequest{Amount: 250})
	require.NoError(t, err)

	response, err := f.svc.PenalizeXP(ctx, student.ID, dto.XPPenaltyRequest{Amount: 200})
	require.NoError(t, err)
	require.Equal(t, 50, response.XP)
	require.Equal(t, []string{"Explorador Iniciante", "Explorador Bronze"}, response.Badges)
}

func TestRewardServiceAwardBadge(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()
	student := createStudent(t, f.db, "Dave", 0, nil)

	response, err := f.svc.AwardBadge(ctx, student.ID, dto.BadgeAwardRequest{BadgeName: "Ajudante da Turma"})
	require.NoError(t, err)
	require.Equal(t, []string{"Ajudante da Turma"}, response.Badges)

	// Repeating the award is a no-op and leaves a single ledger entry.
	response, err = f.svc.AwardBadge(ctx, student.ID, dto.BadgeAwardRequest{BadgeName: "Ajudante da Turma"})
	require.NoError(t, err)
	require.Equal(t, []string{"Ajudante da Turma"}, response.Badges)

	entries, err := f.history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.TransactionBadgeAward, entries[0].TransactionType)

	// Manual badges survive tier merges from later XP gains.
	response, err = f.svc.GrantXP(ctx, student.ID, dto.XPGrantRequest{Amount: 120})
	require.NoError(t, err)
	require.Equal(t, []string{"Ajudante da Turma", "Explorador Iniciante"}, response.Badges)
}

func TestRewardServiceAddQuestAcademicPoints(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()
	student := createStudent(t, f.db, "Eve", 0, nil)
	quest := models.Quest{Code: "essay-1", Name: "Essay", XPOnCompletion: 30, PointsOnCompletion: 2.5}
	require.NoError(t, f.db.Create(&quest).Error)

	response, err := f.svc.AddQuestAcademicPoints(ctx, student.ID, dto.AcademicPointsRequest{QuestCode: "essay-1"})
	require.NoError(t, err)
	require.InDelta(t, 2.5, response.AcademicScore, 0.001)
	require.Equal(t, 0, response.XP, "academic credit does not touch XP")

	entries, err := f.history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.TransactionAcademicPointsGain, entries[0].TransactionType)
	require.InDelta(t, 2.5, entries[0].PointsDelta, 0.001)

	_, err = f.svc.AddQuestAcademicPoints(ctx, student.ID, dto.AcademicPointsRequest{QuestCode: "missing"})
	require.ErrorIs(t, err, ErrQuestNotFound)
}

func TestRewardServicePenalizeGuildXP(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()

	guild := models.Guild{Name: "Rubi"}
	require.NoError(t, f.db.Create(&guild).Error)
	a := createStudent(t, f.db, "A", 40, &guild.ID)
	b := createStudent(t, f.db, "B", 60, &guild.ID)
	c := createStudent(t, f.db, "C", 100, &guild.ID)

	outcomes, err := f.svc.PenalizeGuildXP(ctx, "rubi", dto.GuildPenaltyRequest{Amount: 50, Reason: "noise"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	want := map[uint]int{a.ID: 0, b.ID: 10, c.ID: 50}
	for _, outcome := range outcomes {
		require.Empty(t, outcome.Error)
		require.NotNil(t, outcome.Student)
		require.Equal(t, want[outcome.StudentID], outcome.Student.XP)
	}

	entries, err := f.history.ListByStudentIDs(ctx, []uint{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		require.Equal(t, models.TransactionGuildPenalty, entry.TransactionType)
	}

	_, err = f.svc.PenalizeGuildXP(ctx, "unknown", dto.GuildPenaltyRequest{Amount: 10})
	require.ErrorIs(t, err, ErrGuildNotFound)
}

func TestRewardServicePenalizeGuildXPEmptyGuild(t *testing.T) {
	f := newRewardFixture(t)

	guild := models.Guild{Name: "Vazia"}
	require.NoError(t, f.db.Create(&guild).Error)

	_, err := f.svc.PenalizeGuildXP(context.Background(), "Vazia", dto.GuildPenaltyRequest{Amount: 10})
	require.ErrorIs(t, err, ErrGuildEmpty)
}

func TestRewardServiceCompleteEnrollment(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()

	student := createStudent(t, f.db, "Frank", 180, nil)
	quest := models.Quest{Code: "math-1", Name: "Math Challenge", XPOnCompletion: 50, PointsOnCompletion: 5}
	require.NoError(t, f.db.Create(&quest).Error)
	enrollment := models.Enrollment{StudentID: student.ID, QuestID: quest.ID, Status: models.EnrollmentStatusStarted}
	require.NoError(t, f.db.Create(&enrollment).Error)

	response, err := f.svc.CompleteEnrollment(ctx, enrollment.ID, dto.EnrollmentCompleteRequest{Score: 80})
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusCompleted, response.Status)
	require.Equal(t, 80, response.ScoreInQuest)

	var updated models.Student
	require.NoError(t, f.db.First(&updated, student.ID).Error)
	require.Equal(t, 230, updated.XP)
	require.Equal(t, 3, updated.Level)
	require.Equal(t, 80, updated.TotalPoints)
	require.InDelta(t, 5.0, updated.AcademicScore, 0.001)
	require.Equal(t, []string{"Explorador Iniciante", "Explorador Bronze"}, updated.BadgeList())

	entries, err := f.history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.TransactionXPGainActivity, entries[0].TransactionType)
	require.Equal(t, 50, entries[0].XPDelta)
	require.Equal(t, "quest", entries[0].ReferenceEntity)
	require.NotNil(t, entries[0].ReferenceID)
	require.Equal(t, quest.ID, *entries[0].ReferenceID)
	require.Equal(t, models.TransactionAcademicPointsGain, entries[1].TransactionType)
	require.InDelta(t, 5.0, entries[1].PointsDelta, 0.001)

	// A terminal enrollment cannot be completed again.
	_, err = f.svc.CompleteEnrollment(ctx, enrollment.ID, dto.EnrollmentCompleteRequest{Score: 90})
	require.ErrorIs(t, err, ErrEnrollmentClosed)

	entries, err = f.history.ListByStudentID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "a rejected completion must not append ledger entries")
}

func TestRewardServiceCompleteEnrollmentMissing(t *testing.T) {
	f := newRewardFixture(t)

	_, err := f.svc.CompleteEnrollment(context.Background(), 404, dto.EnrollmentCompleteRequest{Score: 10})
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestRewardServiceBulkEnroll(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()

	guild := models.Guild{Name: "Safira"}
	require.NoError(t, f.db.Create(&guild).Error)
	a := createStudent(t, f.db, "A", 0, &guild.ID)
	b := createStudent(t, f.db, "B", 0, &guild.ID)
	c := createStudent(t, f.db, "C", 0, &guild.ID)

	quest := models.Quest{Code: "sci-1", Name: "Science Fair", XPOnCompletion: 40}
	require.NoError(t, f.db.Create(&quest).Error)
	existing := models.Enrollment{StudentID: b.ID, QuestID: quest.ID, Status: models.EnrollmentStatusStarted}
	require.NoError(t, f.db.Create(&existing).Error)

	response, err := f.svc.BulkEnroll(ctx, dto.BulkEnrollRequest{QuestID: quest.ID, GuildName: "Safira"})
	require.NoError(t, err)
	require.Len(t, response.Created, 2)
	require.Equal(t, []uint{b.ID}, response.Existing)

	created := map[uint]bool{}
	for _, enrollment := range response.Created {
		created[enrollment.StudentID] = true
		require.Equal(t, models.EnrollmentStatusStarted, enrollment.Status)
	}
	require.True(t, created[a.ID])
	require.True(t, created[c.ID])

	_, err = f.svc.BulkEnroll(ctx, dto.BulkEnrollRequest{QuestID: quest.ID})
	require.ErrorIs(t, err, ErrBulkTargetMissing)
}

func TestRewardServiceBulkEnrollByClass(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()

	class := models.Class{Name: "5A"}
	require.NoError(t, f.db.Create(&class).Error)
	g1 := models.Guild{Name: "Alpha", ClassID: &class.ID}
	g2 := models.Guild{Name: "Beta", ClassID: &class.ID}
	other := models.Guild{Name: "Outra"}
	require.NoError(t, f.db.Create(&g1).Error)
	require.NoError(t, f.db.Create(&g2).Error)
	require.NoError(t, f.db.Create(&other).Error)

	createStudent(t, f.db, "A", 0, &g1.ID)
	createStudent(t, f.db, "B", 0, &g2.ID)
	createStudent(t, f.db, "C", 0, &other.ID)

	quest := models.Quest{Code: "hist-1", Name: "History"}
	require.NoError(t, f.db.Create(&quest).Error)

	response, err := f.svc.BulkEnroll(ctx, dto.BulkEnrollRequest{QuestID: quest.ID, ClassID: &class.ID})
	require.NoError(t, err)
	require.Len(t, response.Created, 2, "only students of the class's guilds enroll")
	require.Empty(t, response.Existing)
}

func TestRewardServiceBulkComplete(t *testing.T) {
	f := newRewardFixture(t)
	ctx := context.Background()

	guild := models.Guild{Name: "Esmeralda"}
	require.NoError(t, f.db.Create(&guild).Error)
	a := createStudent(t, f.db, "A", 0, &guild.ID)
	b := createStudent(t, f.db, "B", 0, &guild.ID)
	c := createStudent(t, f.db, "C", 0, &guild.ID)

	quest := models.Quest{Code: "geo-1", Name: "Geo", XPOnCompletion: 60, PointsOnCompletion: 3}
	require.NoError(t, f.db.Create(&quest).Error)

	open1 := models.Enrollment{StudentID: a.ID, QuestID: quest.ID, Status: models.EnrollmentStatusStarted}
	open2 := models.Enrollment{StudentID: b.ID, QuestID: quest.ID, Status: models.EnrollmentStatusInProgress}
	closed := models.Enrollment{StudentID: c.ID, QuestID: quest.ID, Status: models.EnrollmentStatusCompleted}
	require.NoError(t, f.db.Create(&open1).Error)
	require.NoError(t, f.db.Create(&open2).Error)
	require.NoError(t, f.db.Create(&closed).Error)

	response, err := f.svc.BulkComplete(ctx, dto.BulkCompleteRequest{QuestID: quest.ID, GuildName: "Esmeralda", Score: 70})
	require.NoError(t, err)
	require.Len(t, response.Outcomes, 2, "already-terminal enrollments are skipped")

	for _, outcome := range response.Outcomes {
		require.Empty(t, outcome.Error)
		require.NotNil(t, outcome.Student)
		require.Equal(t, 60, outcome.Student.XP)
		require.Equal(t, 70, outcome.Student.TotalPoints)
	}

	var untouched models.Student
	require.NoError(t, f.db.First(&untouched, c.ID).Error)
	require.Equal(t, 0, untouched.XP)
}
