package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// HistoryRepository reads the append-only reward ledger. Writes happen
// through RewardRepository so they always share a transaction with the
// student update that caused them.
type HistoryRepository interface {
	ListByStudentID(ctx context.Context, studentID uint) ([]models.HistoryEntry, error)
	ListByStudentIDs(ctx context.Context, studentIDs []uint) ([]models.HistoryEntry, error)
	ListByClassID(ctx context.Context, classID uint) ([]models.HistoryEntry, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository constructs a history repository.
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) ListByStudentID(ctx context.Context, studentID uint) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *historyRepository) ListByStudentIDs(ctx context.Context, studentIDs []uint) ([]models.HistoryEntry, error) {
	if len(studentIDs) == 0 {
		return []models.HistoryEntry{}, nil
	}

	var entries []models.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", studentIDs).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// ListByClassID resolves the class membership through guild containment.
func (r *historyRepository) ListByClassID(ctx context.Context, classID uint) ([]models.HistoryEntry, error) {
	var studentIDs []uint
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Joins("JOIN guilds ON guilds.id = students.guild_id").
		Where("guilds.class_id = ?", classID).
		Pluck("students.id", &studentIDs).Error
	if err != nil {
		return nil, err
	}

	return r.ListByStudentIDs(ctx, studentIDs)
}
