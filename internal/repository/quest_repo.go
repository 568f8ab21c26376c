package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// QuestRepository provides access to the quest catalog.
type QuestRepository interface {
	Create(ctx context.Context, quest *models.Quest) error
	GetByID(ctx context.Context, id uint) (models.Quest, error)
	GetByCode(ctx context.Context, code string) (models.Quest, error)
	List(ctx context.Context) ([]models.Quest, error)
	UpdateByCode(ctx context.Context, code string, updates map[string]interface{}) (models.Quest, error)
	UpsertBatch(ctx context.Context, quests []models.Quest) (int64, error)
}

type questRepository struct {
	db *gorm.DB
}

// NewQuestRepository constructs a quest repository.
func NewQuestRepository(db *gorm.DB) QuestRepository {
	return &questRepository{db: db}
}

func (r *questRepository) Create(ctx context.Context, quest *models.Quest) error {
	return r.db.WithContext(ctx).Create(quest).Error
}

func (r *questRepository) GetByID(ctx context.Context, id uint) (models.Quest, error) {
	var quest models.Quest
	if err := r.db.WithContext(ctx).First(&quest, id).Error; err != nil {
		return models.Quest{}, err
	}

	return quest, nil
}

func (r *questRepository) GetByCode(ctx context.Context, code string) (models.Quest, error) {
	var quest models.Quest
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&quest).Error; err != nil {
		return models.Quest{}, err
	}

	return quest, nil
}

func (r *questRepository) List(ctx context.Context) ([]models.Quest, error) {
	var quests []models.Quest
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&quests).Error; err != nil {
		return nil, err
	}

	return quests, nil
}

func (r *questRepository) UpdateByCode(ctx context.Context, code string, updates map[string]interface{}) (models.Quest, error) {
	tx := r.db.WithContext(ctx).Model(&models.Quest{}).Where("code = ?", code)
	if err := tx.Updates(updates).Error; err != nil {
		return models.Quest{}, err
	}

	return r.GetByCode(ctx, code)
}

func (r *questRepository) UpsertBatch(ctx context.Context, quests []models.Quest) (int64, error) {
	if len(quests) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "xp_on_completion", "points_on_completion"}),
	}).Create(&quests)

	return result.RowsAffected, result.Error
}
