package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// RewardRepository commits reward-state transitions. Each method is one
// transaction: the aggregate update and its ledger entries persist together
// or not at all.
type RewardRepository interface {
	SaveStudentWithHistory(ctx context.Context, student *models.Student, entries []models.HistoryEntry) error
	CompleteEnrollment(ctx context.Context, enrollment *models.Enrollment, student *models.Student, entries []models.HistoryEntry) error
}

type rewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository constructs a reward repository.
func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) SaveStudentWithHistory(ctx context.Context, student *models.Student, entries []models.HistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(student).Error; err != nil {
			return err
		}

		return appendHistory(tx, student.ID, entries)
	})
}

func (r *rewardRepository) CompleteEnrollment(ctx context.Context, enrollment *models.Enrollment, student *models.Student, entries []models.HistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         enrollment.Status,
			"score_in_quest": enrollment.ScoreInQuest,
		}
		err := tx.Model(&models.Enrollment{}).
			Where("id = ?", enrollment.ID).
			Updates(updates).Error
		if err != nil {
			return err
		}

		if err := tx.Save(student).Error; err != nil {
			return err
		}

		return appendHistory(tx, student.ID, entries)
	})
}

func appendHistory(tx *gorm.DB, studentID uint, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for i := range entries {
		entries[i].StudentID = studentID
	}

	return tx.Create(&entries).Error
}
