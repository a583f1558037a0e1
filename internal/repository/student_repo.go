package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
)

// StudentRepository owns the roster rows. Enabled/disabled state is the only
// mutable part touched by the core; students are never hard-deleted.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByEmail(ctx context.Context, email string) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	List(ctx context.Context) ([]models.Student, error)
	ListEligible(ctx context.Context) ([]models.Student, error)
	SetEnabledByEmail(ctx context.Context, email string, enabled bool) error
	BulkDisable(ctx context.Context, emails []string) (int64, error)
	InTransaction(ctx context.Context, fn func(StudentRepository) error) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the roster repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Preload("Roles").First(&student, id).Error
	return student, err
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", strings.ToLower(email)).
		First(&student).Error
	return student, err
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	student.Email = strings.ToLower(student.Email)
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).Preload("Roles").Order("email ASC").Find(&students).Error
	return students, err
}

func (r *studentRepository) ListEligible(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("enabled = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM student_roles sr WHERE sr.student_id = students.id AND sr.role IN ?)",
			[]string{models.RoleAdmin, models.RoleSuperAdmin}).
		Order("full_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepository) SetEnabledByEmail(ctx context.Context, email string, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("email = ?", strings.ToLower(email)).
		Update("enabled", enabled).Error
}

func (r *studentRepository) BulkDisable(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("email IN ?", emails).
		Where("enabled = ?", true).
		Update("enabled", false)
	return result.RowsAffected, result.Error
}

func (r *studentRepository) InTransaction(ctx context.Context, fn func(StudentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&studentRepository{db: tx})
	})
}
