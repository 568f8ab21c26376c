package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// ClassRepository provides access to class records and owns the class
// cascade delete.
type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id uint) (models.Class, error)
	GetByName(ctx context.Context, name string) (models.Class, error)
	List(ctx context.Context) ([]models.Class, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Class, error)
	Delete(ctx context.Context, id uint) error
	UpsertBatch(ctx context.Context, classes []models.Class) (int64, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs a class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).
		Preload("Guilds").
		Preload("Guilds.Students").
		First(&class, id).Error
	if err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) GetByName(ctx context.Context, name string) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&class).Error
	if err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) List(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).
		Preload("Guilds").
		Preload("Guilds.Students").
		Order("id ASC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Class, error) {
	tx := r.db.WithContext(ctx).Model(&models.Class{}).Where("id = ?", id)
	if err := tx.Updates(updates).Error; err != nil {
		return models.Class{}, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes the class and, leaf-first, all guilds, students,
// enrollments and history entries below it, in one transaction.
func (r *classRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.First(&models.Class{}, id)
		if result.Error != nil {
			return result.Error
		}

		var guildIDs []uint
		err := tx.Model(&models.Guild{}).
			Where("class_id = ?", id).
			Pluck("id", &guildIDs).Error
		if err != nil {
			return err
		}

		if err := deleteGuildsCascade(tx, guildIDs); err != nil {
			return err
		}

		return tx.Delete(&models.Class{}, id).Error
	})
}

func (r *classRepository) UpsertBatch(ctx context.Context, classes []models.Class) (int64, error) {
	if len(classes) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"year"}),
	}).Create(&classes)

	return result.RowsAffected, result.Error
}
