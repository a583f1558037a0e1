package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/repository"
)

// ExerciseService lists the exercises currently open for submission.
type ExerciseService interface {
	ListAvailable(ctx context.Context) ([]dto.GuideWithExercises, error)
}

type exerciseService struct {
	exercises repository.ExerciseRepository
	logger    zerolog.Logger
}

// NewExerciseService constructs the exercise listing service.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, logger zerolog.Logger) ExerciseService {
	return &exerciseService{
		exercises: exerciseRepo,
		logger:    logger.With().Str("component", "exercise_service").Logger(),
	}
}

func (s *exerciseService) ListAvailable(ctx context.Context) ([]dto.GuideWithExercises, error) {
	guides, err := s.exercises.ListEnabledGuides(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exercises.ListEnabledExercises(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make([]dto.GuideWithExercises, 0, len(guides))
	for _, guide := range guides {
		entry := dto.GuideWithExercises{
			GuideNumber: guide.GuideNumber,
			Enabled:     guide.Enabled,
			Deadline:    guide.Deadline,
			Exercises:   []dto.ExerciseEntry{},
		}
		for _, exercise := range exercises {
			if exercise.GuideNumber != guide.GuideNumber {
				continue
			}
			entry.Exercises = append(entry.Exercises, dto.ExerciseEntry{
				ExerciseNumber:    exercise.ExerciseNumber,
				Enabled:           exercise.Enabled,
				FunctionSignature: exercise.FunctionSignature,
			})
		}
		grouped = append(grouped, entry)
	}
	return grouped, nil
}
