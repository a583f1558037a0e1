package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
)

// SubmissionRepository is the append-only submission log. No update or
// delete operation is exposed; readers only ever observe a row before or
// after its append.
type SubmissionRepository interface {
	Append(ctx context.Context, submission *models.Submission) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	FindOne(ctx context.Context, studentID uint, guideNumber, exerciseNumber int, submittedAt time.Time) (models.Submission, error)
	ListByExercise(ctx context.Context, guideNumber, exerciseNumber int) ([]models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Submission, error)
}

type submissionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSubmissionRepository constructs the submission log repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db, now: time.Now}
}

// Append inserts the record and stamps SubmittedAt with the current instant
// when unset. The stamp is truncated to millisecond precision so the
// timestamp survives a round trip through the unix-millis lookup route. The
// surrogate primary key keeps two same-tick submissions from colliding.
func (r *submissionRepository) Append(ctx context.Context, submission *models.Submission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = r.now().UTC().Truncate(time.Millisecond)
	}
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) FindOne(ctx context.Context, studentID uint, guideNumber, exerciseNumber int, submittedAt time.Time) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND guide_number = ? AND exercise_number = ? AND submitted_at = ?",
			studentID, guideNumber, exerciseNumber, submittedAt).
		First(&submission).Error
	return submission, err
}

func (r *submissionRepository) ListByExercise(ctx context.Context, guideNumber, exerciseNumber int) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("guide_number = ? AND exercise_number = ?", guideNumber, exerciseNumber).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).Order("submitted_at ASC").Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListSince(ctx context.Context, since time.Time) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("submitted_at >= ?", since).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}
