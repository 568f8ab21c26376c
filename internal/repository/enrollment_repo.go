package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/willow-go-api/internal/models"
)

// EnrollmentRepository provides access to enrollment records.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	ListByStudentID(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	ListByQuestID(ctx context.Context, questID uint) ([]models.Enrollment, error)
	ListOpenByQuestAndStudents(ctx context.Context, questID uint, studentIDs []uint) ([]models.Enrollment, error)
	EnrolledStudentIDs(ctx context.Context, questID uint, studentIDs []uint) ([]uint, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Quest").
		First(&enrollment, id).Error
	if err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

func (r *enrollmentRepository) ListByStudentID(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Quest").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListByQuestID(ctx context.Context, questID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("quest_id = ?", questID).
		Order("id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListOpenByQuestAndStudents(ctx context.Context, questID uint, studentIDs []uint) ([]models.Enrollment, error) {
	if len(studentIDs) == 0 {
		return []models.Enrollment{}, nil
	}

	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Quest").
		Where("quest_id = ?", questID).
		Where("student_id IN ?", studentIDs).
		Where("status IN ?", []string{models.EnrollmentStatusStarted, models.EnrollmentStatusInProgress}).
		Order("id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

// EnrolledStudentIDs returns the subset of studentIDs that already hold an
// enrollment for the quest, whatever its status.
func (r *enrollmentRepository) EnrolledStudentIDs(ctx context.Context, questID uint, studentIDs []uint) ([]uint, error) {
	if len(studentIDs) == 0 {
		return []uint{}, nil
	}

	var enrolled []uint
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("quest_id = ?", questID).
		Where("student_id IN ?", studentIDs).
		Distinct().
		Pluck("student_id", &enrolled).Error
	if err != nil {
		return nil, err
	}

	return enrolled, nil
}
