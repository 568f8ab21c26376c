package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetWithGuild(ctx context.Context, id uint) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	SearchByName(ctx context.Context, name string) ([]models.Student, error)
	ListByGuildID(ctx context.Context, guildID uint) ([]models.Student, error)
	ListByClassID(ctx context.Context, classID uint) ([]models.Student, error)
	Save(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetWithGuild(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("Guild").
		Preload("Guild.Class").
		First(&student, id).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Preload("Guild").
		Preload("Guild.Class").
		Order("id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) SearchByName(ctx context.Context, name string) ([]models.Student, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"

	var students []models.Student
	err := r.db.WithContext(ctx).
		Preload("Guild").
		Preload("Guild.Class").
		Where("LOWER(name) LIKE ?", like).
		Order("id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) ListByGuildID(ctx context.Context, guildID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Preload("Guild").
		Preload("Guild.Class").
		Where("guild_id = ?", guildID).
		Order("xp DESC, id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

// ListByClassID returns every student whose guild belongs to the class.
func (r *studentRepository) ListByClassID(ctx context.Context, classID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN guilds ON guilds.id = students.guild_id").
		Where("guilds.class_id = ?", classID).
		Order("students.id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Save(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// Delete removes the student together with its enrollments and history in
// one transaction, leaf-first.
func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.First(&models.Student{}, id)
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("student_id = ?", id).Delete(&models.HistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Student{}, id).Error
	})
}
