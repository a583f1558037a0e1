package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
)

// ExerciseRepository reads guide and exercise reference data. Mutation of
// guides and exercises happens through administrative tooling outside this
// service.
type ExerciseRepository interface {
	GetGuide(ctx context.Context, guideNumber int) (models.Guide, error)
	GetWithGuide(ctx context.Context, guideNumber, exerciseNumber int) (models.Exercise, models.Guide, error)
	ListEnabledGuides(ctx context.Context) ([]models.Guide, error)
	ListEnabledExercises(ctx context.Context) ([]models.Exercise, error)
}

type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository constructs the exercise reference repository.
func NewExerciseRepository(db *gorm.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) GetGuide(ctx context.Context, guideNumber int) (models.Guide, error) {
	var guide models.Guide
	err := r.db.WithContext(ctx).First(&guide, "guide_number = ?", guideNumber).Error
	return guide, err
}

func (r *exerciseRepository) GetWithGuide(ctx context.Context, guideNumber, exerciseNumber int) (models.Exercise, models.Guide, error) {
	var exercise models.Exercise
	err := r.db.WithContext(ctx).
		Where("guide_number = ? AND exercise_number = ?", guideNumber, exerciseNumber).
		First(&exercise).Error
	if err != nil {
		return models.Exercise{}, models.Guide{}, err
	}

	guide, err := r.GetGuide(ctx, guideNumber)
	if err != nil {
		return models.Exercise{}, models.Guide{}, err
	}
	return exercise, guide, nil
}

func (r *exerciseRepository) ListEnabledGuides(ctx context.Context) ([]models.Guide, error) {
	var guides []models.Guide
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("guide_number ASC").
		Find(&guides).Error
	return guides, err
}

// ListEnabledExercises returns exercises that are themselves enabled and
// whose owning guide is enabled.
func (r *exerciseRepository) ListEnabledExercises(ctx context.Context) ([]models.Exercise, error) {
	var exercises []models.Exercise
	err := r.db.WithContext(ctx).
		Joins("JOIN guides ON guides.guide_number = exercises.guide_number AND guides.enabled = ?", true).
		Where("exercises.enabled = ?", true).
		Order("exercises.guide_number ASC, exercises.exercise_number ASC").
		Find(&exercises).Error
	return exercises, err
}
