package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// GuildRepository provides access to guild records and owns the guild
// cascade delete.
type GuildRepository interface {
	Create(ctx context.Context, guild *models.Guild) error
	GetByID(ctx context.Context, id uint) (models.Guild, error)
	GetByName(ctx context.Context, name string) (models.Guild, error)
	List(ctx context.Context) ([]models.Guild, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Guild, error)
	Delete(ctx context.Context, id uint) error
}

type guildRepository struct {
	db *gorm.DB
}

// NewGuildRepository constructs a guild repository.
func NewGuildRepository(db *gorm.DB) GuildRepository {
	return &guildRepository{db: db}
}

func (r *guildRepository) Create(ctx context.Context, guild *models.Guild) error {
	return r.db.WithContext(ctx).Create(guild).Error
}

func (r *guildRepository) GetByID(ctx context.Context, id uint) (models.Guild, error) {
	var guild models.Guild
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Students").
		First(&guild, id).Error
	if err != nil {
		return models.Guild{}, err
	}

	return guild, nil
}

func (r *guildRepository) GetByName(ctx context.Context, name string) (models.Guild, error) {
	var guild models.Guild
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Students").
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&guild).Error
	if err != nil {
		return models.Guild{}, err
	}

	return guild, nil
}

func (r *guildRepository) List(ctx context.Context) ([]models.Guild, error) {
	var guilds []models.Guild
	err := r.db.WithContext(ctx).
		Preload("Class").
		Preload("Students").
		Order("id ASC").
		Find(&guilds).Error
	if err != nil {
		return nil, err
	}

	return guilds, nil
}

func (r *guildRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Guild, error) {
	tx := r.db.WithContext(ctx).Model(&models.Guild{}).Where("id = ?", id)
	if err := tx.Updates(updates).Error; err != nil {
		return models.Guild{}, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes the guild and everything it owns in dependency order:
// history entries, then enrollments, then students, then the guild itself.
// The whole cascade commits or rolls back as a unit.
func (r *guildRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.First(&models.Guild{}, id)
		if result.Error != nil {
			return result.Error
		}

		return deleteGuildsCascade(tx, []uint{id})
	})
}

// deleteGuildsCascade walks the containment tree below the given guilds and
// issues deletes leaf-first. Callers must run it inside a transaction.
func deleteGuildsCascade(tx *gorm.DB, guildIDs []uint) error {
	if len(guildIDs) == 0 {
		return nil
	}

	var studentIDs []uint
	err := tx.Model(&models.Student{}).
		Where("guild_id IN ?", guildIDs).
		Pluck("id", &studentIDs).Error
	if err != nil {
		return err
	}

	if len(studentIDs) > 0 {
		if err := tx.Where("student_id IN ?", studentIDs).Delete(&models.HistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id IN ?", studentIDs).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", studentIDs).Delete(&models.Student{}).Error; err != nil {
			return err
		}
	}

	return tx.Where("id IN ?", guildIDs).Delete(&models.Guild{}).Error
}
