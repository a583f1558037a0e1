package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
)

func TestListAvailableGroupsEnabledExercisesByGuide(t *testing.T) {
	deadline := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	exercises := &stubExerciseRepo{
		guides: map[int]models.Guide{
			1: {GuideNumber: 1, Enabled: true, Deadline: &deadline},
			2: {GuideNumber: 2, Enabled: true},
			3: {GuideNumber: 3, Enabled: false},
		},
		exercises: map[models.ExerciseKey]models.Exercise{
			{GuideNumber: 1, ExerciseNumber: 1}: {GuideNumber: 1, ExerciseNumber: 1, Enabled: true, FunctionSignature: "int sum(int a, int b)"},
			{GuideNumber: 1, ExerciseNumber: 2}: {GuideNumber: 1, ExerciseNumber: 2, Enabled: false},
			{GuideNumber: 3, ExerciseNumber: 1}: {GuideNumber: 3, ExerciseNumber: 1, Enabled: true},
		},
	}

	svc := NewExerciseService(exercises, zerolog.Nop())
	guides, err := svc.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, guides, 2)

	require.Equal(t, 1, guides[0].GuideNumber)
	require.NotNil(t, guides[0].Deadline)
	require.Len(t, guides[0].Exercises, 1)
	require.Equal(t, 1, guides[0].Exercises[0].ExerciseNumber)
	require.Equal(t, "int sum(int a, int b)", guides[0].Exercises[0].FunctionSignature)

	// An enabled guide with no enabled exercises still lists, empty.
	require.Equal(t, 2, guides[1].GuideNumber)
	require.Empty(t, guides[1].Exercises)
}
