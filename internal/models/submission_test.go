package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildTriesAggregatesPerStudentAndExercise(t *testing.T) {
	submissions := []Submission{
		{StudentID: 1, GuideNumber: 1, ExerciseNumber: 1, Success: false},
		{StudentID: 1, GuideNumber: 1, ExerciseNumber: 1, Success: true},
		{StudentID: 1, GuideNumber: 1, ExerciseNumber: 1, Success: false},
		{StudentID: 1, GuideNumber: 1, ExerciseNumber: 2, Success: false},
		{StudentID: 2, GuideNumber: 1, ExerciseNumber: 1, Success: false},
	}

	tries := BuildTries(submissions)
	require.Len(t, tries, 3)

	byKey := make(map[Try]bool)
	for _, try := range tries {
		key := Try{StudentID: try.StudentID, GuideNumber: try.GuideNumber, ExerciseNumber: try.ExerciseNumber}
		byKey[key] = try.Success
	}

	// One success anywhere in the log makes the try successful.
	require.True(t, byKey[Try{StudentID: 1, GuideNumber: 1, ExerciseNumber: 1}])
	require.False(t, byKey[Try{StudentID: 1, GuideNumber: 1, ExerciseNumber: 2}])
	require.False(t, byKey[Try{StudentID: 2, GuideNumber: 1, ExerciseNumber: 1}])
}

func TestBuildTriesEmptyLog(t *testing.T) {
	require.Empty(t, BuildTries(nil))
}

func TestStudentEligibility(t *testing.T) {
	regular := Student{Enabled: true}
	require.True(t, regular.IsEligible())

	disabled := Student{Enabled: false}
	require.False(t, disabled.IsEligible())

	admin := Student{Enabled: true, Roles: []StudentRole{{Role: RoleAdmin}}}
	require.True(t, admin.IsElevated())
	require.False(t, admin.IsEligible())
}

func TestGuideDeadlinePassed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	open := Guide{}
	require.False(t, open.DeadlinePassed(now))

	future := now.Add(time.Hour)
	upcoming := Guide{Deadline: &future}
	require.False(t, upcoming.DeadlinePassed(now))

	past := now.Add(-time.Hour)
	closed := Guide{Deadline: &past}
	require.True(t, closed.DeadlinePassed(now))
}
