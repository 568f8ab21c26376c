package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/dto"
	"github.com/noah-isme/willow-go-api/internal/gamification"
	"github.com/noah-isme/willow-go-api/internal/models"
	"github.com/noah-isme/willow-go-api/internal/observability"
	"github.com/noah-isme/willow-go-api/internal/repository"
)

var (
	// ErrEnrollmentClosed indicates a completion attempt on an enrollment
	// that already reached a terminal state.
	ErrEnrollmentClosed = errors.New("enrollment already completed or failed")
	// ErrGuildEmpty indicates a guild-wide operation hit a guild with no members.
	ErrGuildEmpty = errors.New("guild has no students")
	// ErrBulkTargetMissing indicates a bulk enrollment without a guild or class target.
	ErrBulkTargetMissing = errors.New("either guild name or class id must be provided")
)

// LeaderboardInvalidator drops cached rankings after a reward commit.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// RewardPublisher emits reward events for external consumers.
type RewardPublisher interface {
	PublishReward(event RewardEvent)
}

// RewardEvent is the payload published after each committed transition.
type RewardEvent struct {
	TransactionType string  `json:"transaction_type"`
	StudentID       uint    `json:"student_id"`
	XPDelta         int     `json:"xp_delta"`
	PointsDelta     float64 `json:"points_delta"`
	Reason          string  `json:"reason,omitempty"`
}

// RewardService is the reward engine. Every mutation of a student's XP,
// points, badges or academic score flows through it, so each change is
// committed together with its ledger entry.
type RewardService interface {
	GrantXP(ctx context.Context, studentID uint, req dto.XPGrantRequest) (dto.StudentResponse, error)
	PenalizeXP(ctx context.Context, studentID uint, req dto.XPPenaltyRequest) (dto.StudentResponse, error)
	AwardBadge(ctx context.Context, studentID uint, req dto.BadgeAwardRequest) (dto.StudentResponse, error)
	AddQuestAcademicPoints(ctx context.Context, studentID uint, req dto.AcademicPointsRequest) (dto.StudentResponse, error)
	PenalizeGuildXP(ctx context.Context, guildName string, req dto.GuildPenaltyRequest) ([]dto.StudentOutcome, error)
	CompleteEnrollment(ctx context.Context, enrollmentID uint, req dto.EnrollmentCompleteRequest) (dto.EnrollmentResponse, error)
	BulkEnroll(ctx context.Context, req dto.BulkEnrollRequest) (dto.BulkEnrollResponse, error)
	BulkComplete(ctx context.Context, req dto.BulkCompleteRequest) (dto.BulkCompleteResponse, error)
}

type rewardService struct {
	students    repository.StudentRepository
	guilds      repository.GuildRepository
	quests      repository.QuestRepository
	enrollments repository.EnrollmentRepository
	rewards     repository.RewardRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	leaderboard LeaderboardInvalidator
	publisher   RewardPublisher
	logger      zerolog.Logger
}

// NewRewardService constructs the reward engine. Leaderboard and publisher
// are optional.
func NewRewardService(
	students repository.StudentRepository,
	guilds repository.GuildRepository,
	quests repository.QuestRepository,
	enrollments repository.EnrollmentRepository,
	rewards repository.RewardRepository,
	validate *validator.Validate,
	leaderboard LeaderboardInvalidator,
	publisher RewardPublisher,
	logger zerolog.Logger,
) RewardService {
	return &rewardService{
		students:    students,
		guilds:      guilds,
		quests:      quests,
		enrollments: enrollments,
		rewards:     rewards,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		leaderboard: leaderboard,
		publisher:   publisher,
		logger:      logger.With().Str("component", "reward_service").Logger(),
	}
}

func (s *rewardService) GrantXP(ctx context.Context, studentID uint, req dto.XPGrantRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, translateStudentErr(err)
	}

	if err := applyXPGain(&student, req.Amount); err != nil {
		return dto.StudentResponse{}, err
	}

	entry := models.HistoryEntry{
		TransactionType: models.TransactionXPGainActivity,
		XPDelta:         req.Amount,
		Reason:          s.reason(req.Reason, fmt.Sprintf("manual XP grant of %d", req.Amount)),
		ReferenceEntity: req.ReferenceEntity,
		ReferenceID:     req.ReferenceID,
	}

	if err := s.commit(ctx, &student, entry); err != nil {
		return dto.StudentResponse{}, err
	}

	return s.studentResponse(ctx, student)
}

func (s *rewardService) PenalizeXP(ctx context.Context, studentID uint, req dto.XPPenaltyRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, translateStudentErr(err)
	}

	reason := s.reason(req.Reason, fmt.Sprintf("manual XP penalty of %d", req.Amount))
	entry, err := s.penalize(ctx, &student, req.Amount, models.TransactionXPPenalty, reason, req.ReferenceEntity, req.ReferenceID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Int("xp_delta", entry.XPDelta).Msg("xp penalty applied")
	return s.studentResponse(ctx, student)
}

func (s *rewardService) AwardBadge(ctx context.Context, studentID uint, req dto.BadgeAwardRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, translateStudentErr(err)
	}

	// Granting a badge the student already holds is a no-op, not an error.
	if student.HasBadge(req.BadgeName) {
		return s.studentResponse(ctx, student)
	}

	if err := student.SetBadges(append(student.BadgeList(), req.BadgeName)); err != nil {
		return dto.StudentResponse{}, err
	}

	entry := models.HistoryEntry{
		TransactionType: models.TransactionBadgeAward,
		Reason:          s.reason(req.Reason, fmt.Sprintf("badge %q awarded", req.BadgeName)),
		ReferenceEntity: "badge",
	}

	if err := s.commit(ctx, &student, entry); err != nil {
		return dto.StudentResponse{}, err
	}

	return s.studentResponse(ctx, student)
}

func (s *rewardService) AddQuestAcademicPoints(ctx context.Context, studentID uint, req dto.AcademicPointsRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, translateStudentErr(err)
	}

	quest, err := s.quests.GetByCode(ctx, req.QuestCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrQuestNotFound
		}
		return dto.StudentResponse{}, err
	}

	// The credited value always comes from the quest definition, so academic
	// score deltas stay within the catalog's predefined set.
	student.AcademicScore += quest.PointsOnCompletion

	entry := models.HistoryEntry{
		TransactionType: models.TransactionAcademicPointsGain,
		PointsDelta:     quest.PointsOnCompletion,
		Reason:          s.reason(req.Reason, fmt.Sprintf("academic points for quest %s", quest.Code)),
		ReferenceEntity: "quest",
		ReferenceID:     &quest.ID,
	}

	if err := s.commit(ctx, &student, entry); err != nil {
		return dto.StudentResponse{}, err
	}

	return s.studentResponse(ctx, student)
}

// PenalizeGuildXP applies the penalty to every member independently. Each
// student is its own commit unit: a failure partway through leaves earlier
// penalties in place and is reported in that student's outcome.
func (s *rewardService) PenalizeGuildXP(ctx context.Context, guildName string, req dto.GuildPenaltyRequest) ([]dto.StudentOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	guild, err := s.guilds.GetByName(ctx, guildName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuildNotFound
		}
		return nil, err
	}
	if len(guild.Students) == 0 {
		return nil, ErrGuildEmpty
	}

	reason := s.reason(req.Reason, fmt.Sprintf("guild %s penalty of %d", guild.Name, req.Amount))

	outcomes := make([]dto.StudentOutcome, 0, len(guild.Students))
	for _, member := range guild.Students {
		student, err := s.students.GetByID(ctx, member.ID)
		if err != nil {
			outcomes = append(outcomes, dto.StudentOutcome{StudentID: member.ID, Error: err.Error()})
			continue
		}

		if _, err := s.penalize(ctx, &student, req.Amount, models.TransactionGuildPenalty, reason, "guild", &guild.ID); err != nil {
			outcomes = append(outcomes, dto.StudentOutcome{StudentID: member.ID, Error: err.Error()})
			continue
		}

		response := dto.NewStudentResponse(student)
		outcomes = append(outcomes, dto.StudentOutcome{StudentID: member.ID, Student: &response})
	}

	s.logger.Info().Str("guild", guild.Name).Int("students", len(outcomes)).Msg("guild penalty applied")
	return outcomes, nil
}

func (s *rewardService) CompleteEnrollment(ctx context.Context, enrollmentID uint, req dto.EnrollmentCompleteRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrEnrollmentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	if err := s.completeOne(ctx, &enrollment, req.Score); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	updated, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	return dto.NewEnrollmentResponse(updated), nil
}

func (s *rewardService) BulkEnroll(ctx context.Context, req dto.BulkEnrollRequest) (dto.BulkEnrollResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BulkEnrollResponse{}, err
	}

	quest, err := s.quests.GetByID(ctx, req.QuestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BulkEnrollResponse{}, ErrQuestNotFound
		}
		return dto.BulkEnrollResponse{}, err
	}

	students, err := s.resolveBulkTarget(ctx, req)
	if err != nil {
		return dto.BulkEnrollResponse{}, err
	}

	studentIDs := make([]uint, 0, len(students))
	for _, student := range students {
		studentIDs = append(studentIDs, student.ID)
	}

	enrolled, err := s.enrollments.EnrolledStudentIDs(ctx, quest.ID, studentIDs)
	if err != nil {
		return dto.BulkEnrollResponse{}, err
	}
	enrolledSet := make(map[uint]struct{}, len(enrolled))
	for _, id := range enrolled {
		enrolledSet[id] = struct{}{}
	}

	response := dto.BulkEnrollResponse{
		Created:  []dto.EnrollmentResponse{},
		Existing: enrolled,
	}
	for _, student := range students {
		if _, ok := enrolledSet[student.ID]; ok {
			continue
		}

		enrollment := models.Enrollment{
			StudentID: student.ID,
			QuestID:   quest.ID,
			Status:    models.EnrollmentStatusStarted,
		}
		if err := s.enrollments.Create(ctx, &enrollment); err != nil {
			return response, err
		}
		enrollment.Student = student
		enrollment.Quest = quest
		response.Created = append(response.Created, dto.NewEnrollmentResponse(enrollment))
	}

	s.logger.Info().Uint("quest_id", quest.ID).Int("created", len(response.Created)).Msg("bulk enrollment completed")
	return response, nil
}

// BulkComplete completes every open enrollment for the quest held by a
// member of the guild. Per-student outcomes share the fan-out semantics of
// PenalizeGuildXP.
func (s *rewardService) BulkComplete(ctx context.Context, req dto.BulkCompleteRequest) (dto.BulkCompleteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BulkCompleteResponse{}, err
	}

	guild, err := s.guilds.GetByName(ctx, req.GuildName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BulkCompleteResponse{}, ErrGuildNotFound
		}
		return dto.BulkCompleteResponse{}, err
	}

	memberIDs := make([]uint, 0, len(guild.Students))
	for _, member := range guild.Students {
		memberIDs = append(memberIDs, member.ID)
	}

	open, err := s.enrollments.ListOpenByQuestAndStudents(ctx, req.QuestID, memberIDs)
	if err != nil {
		return dto.BulkCompleteResponse{}, err
	}

	outcomes := make([]dto.StudentOutcome, 0, len(open))
	for i := range open {
		enrollment := open[i]
		if err := s.completeOne(ctx, &enrollment, req.Score); err != nil {
			outcomes = append(outcomes, dto.StudentOutcome{StudentID: enrollment.StudentID, Error: err.Error()})
			continue
		}

		student, err := s.students.GetWithGuild(ctx, enrollment.StudentID)
		if err != nil {
			outcomes = append(outcomes, dto.StudentOutcome{StudentID: enrollment.StudentID, Error: err.Error()})
			continue
		}
		response := dto.NewStudentResponse(student)
		outcomes = append(outcomes, dto.StudentOutcome{StudentID: enrollment.StudentID, Student: &response})
	}

	return dto.BulkCompleteResponse{Outcomes: outcomes}, nil
}

// completeOne runs the enrollment completion transition: status and score on
// the enrollment, quest XP with badge resolution, the score into total
// points, quest academic points, and the two ledger entries — all in one
// transaction.
func (s *rewardService) completeOne(ctx context.Context, enrollment *models.Enrollment, score int) error {
	if !enrollment.IsOpen() {
		return ErrEnrollmentClosed
	}

	quest, err := s.quests.GetByID(ctx, enrollment.QuestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestNotFound
		}
		return err
	}

	student, err := s.students.GetByID(ctx, enrollment.StudentID)
	if err != nil {
		return translateStudentErr(err)
	}

	enrollment.Status = models.EnrollmentStatusCompleted
	enrollment.ScoreInQuest = score

	if err := applyXPGain(&student, quest.XPOnCompletion); err != nil {
		return err
	}
	student.TotalPoints += score
	student.AcademicScore += quest.PointsOnCompletion

	entries := []models.HistoryEntry{
		{
			TransactionType: models.TransactionXPGainActivity,
			XPDelta:         quest.XPOnCompletion,
			Reason:          fmt.Sprintf("quest %s completed with score %d", quest.Code, score),
			ReferenceEntity: "quest",
			ReferenceID:     &quest.ID,
		},
		{
			TransactionType: models.TransactionAcademicPointsGain,
			PointsDelta:     quest.PointsOnCompletion,
			Reason:          fmt.Sprintf("academic points for quest %s", quest.Code),
			ReferenceEntity: "quest",
			ReferenceID:     &quest.ID,
		},
	}

	if err := s.rewards.CompleteEnrollment(ctx, enrollment, &student, entries); err != nil {
		return err
	}

	s.afterCommit(ctx, entries, student.ID)
	return nil
}

// penalize clamps XP at zero and commits the transition. The ledger entry
// records the delta actually applied, not the requested amount.
func (s *rewardService) penalize(ctx context.Context, student *models.Student, amount int, txType, reason, refEntity string, refID *uint) (models.HistoryEntry, error) {
	applied := amount
	if applied > student.XP {
		applied = student.XP
	}

	student.XP -= applied
	student.Level = gamification.LevelForXP(student.XP)
	// Badges already earned are never revoked, even below their threshold.

	entry := models.HistoryEntry{
		TransactionType: txType,
		XPDelta:         -applied,
		Reason:          reason,
		ReferenceEntity: refEntity,
		ReferenceID:     refID,
	}

	if err := s.commit(ctx, student, entry); err != nil {
		return models.HistoryEntry{}, err
	}

	return entry, nil
}

func (s *rewardService) resolveBulkTarget(ctx context.Context, req dto.BulkEnrollRequest) ([]models.Student, error) {
	switch {
	case strings.TrimSpace(req.GuildName) != "":
		guild, err := s.guilds.GetByName(ctx, req.GuildName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGuildNotFound
			}
			return nil, err
		}
		return guild.Students, nil
	case req.ClassID != nil:
		return s.students.ListByClassID(ctx, *req.ClassID)
	default:
		return nil, ErrBulkTargetMissing
	}
}

func (s *rewardService) commit(ctx context.Context, student *models.Student, entry models.HistoryEntry) error {
	if err := s.rewards.SaveStudentWithHistory(ctx, student, []models.HistoryEntry{entry}); err != nil {
		s.logger.Error().Err(err).Uint("student_id", student.ID).Msg("failed to commit reward transition")
		return err
	}

	s.afterCommit(ctx, []models.HistoryEntry{entry}, student.ID)
	return nil
}

func (s *rewardService) afterCommit(ctx context.Context, entries []models.HistoryEntry, studentID uint) {
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}

	for _, entry := range entries {
		observability.RewardTransactions().WithLabelValues(entry.TransactionType).Inc()
		if s.publisher != nil {
			s.publisher.PublishReward(RewardEvent{
				TransactionType: entry.TransactionType,
				StudentID:       studentID,
				XPDelta:         entry.XPDelta,
				PointsDelta:     entry.PointsDelta,
				Reason:          entry.Reason,
			})
		}
	}
}

func (s *rewardService) studentResponse(ctx context.Context, student models.Student) (dto.StudentResponse, error) {
	loaded, err := s.students.GetWithGuild(ctx, student.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(loaded), nil
}

// reason sanitizes caller-provided free text and falls back to a generated
// description when nothing is left.
func (s *rewardService) reason(raw, fallback string) string {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if clean == "" {
		return fallback
	}
	return clean
}

// applyXPGain is the pure XP-gain transition: bump XP, restore the level
// invariant and union newly reached tier badges into the badge set.
func applyXPGain(student *models.Student, amount int) error {
	student.XP += amount
	student.Level = gamification.LevelForXP(student.XP)
	return student.SetBadges(gamification.MergeBadges(student.BadgeList(), gamification.TierBadges(student.XP)))
}

func translateStudentErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudentNotFound
	}
	return err
}
