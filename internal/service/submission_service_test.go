package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/pkg/judge"
)

func openExerciseRepo() *stubExerciseRepo {
	return &stubExerciseRepo{
		guides: map[int]models.Guide{
			1: {GuideNumber: 1, Enabled: true},
		},
		exercises: map[models.ExerciseKey]models.Exercise{
			{GuideNumber: 1, ExerciseNumber: 2}: {GuideNumber: 1, ExerciseNumber: 2, Enabled: true},
		},
	}
}

func newSubmissionService(submissions *stubSubmissionRepo, exercises *stubExerciseRepo, judgeClient *stubJudgeClient, events EventPublisher) SubmissionService {
	return NewSubmissionService(submissions, exercises, judgeClient, events, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestSubmitRejectsUnknownExercise(t *testing.T) {
	repo := &stubSubmissionRepo{}
	judgeClient := &stubJudgeClient{}
	svc := newSubmissionService(repo, &stubExerciseRepo{guides: map[int]models.Guide{}, exercises: map[models.ExerciseKey]models.Exercise{}}, judgeClient, nil)

	_, err := svc.Submit(context.Background(), 1, dto.SubmitRequest{GuideNumber: 9, ExerciseNumber: 9, Code: "int main() {}"})
	require.ErrorIs(t, err, ErrNotEligible)
	require.Zero(t, judgeClient.calls)
	require.Empty(t, repo.submissions)
}

func TestSubmitRejectsDisabledExercise(t *testing.T) {
	exercises := openExerciseRepo()
	exercises.exercises[models.ExerciseKey{GuideNumber: 1, ExerciseNumber: 2}] = models.Exercise{GuideNumber: 1, ExerciseNumber: 2, Enabled: false}
	repo := &stubSubmissionRepo{}
	svc := newSubmissionService(repo, exercises, &stubJudgeClient{}, nil)

	_, err := svc.Submit(context.Background(), 1, dto.SubmitRequest{GuideNumber: 1, ExerciseNumber: 2, Code: "int main() {}"})
	require.ErrorIs(t, err, ErrNotEligible)
	require.Empty(t, repo.submissions)
}

func TestSubmitRejectsPastDeadline(t *testing.T) {
	exercises := openExerciseRepo()
	past := time.Now().Add(-time.Hour)
	exercises.guides[1] = models.Guide{GuideNumber: 1, Enabled: true, Deadline: &past}
	repo := &stubSubmissionRepo{}
	judgeClient := &stubJudgeClient{}
	svc := newSubmissionService(repo, exercises, judgeClient, nil)

	_, err := svc.Submit(context.Background(), 1, dto.SubmitRequest{GuideNumber: 1, ExerciseNumber: 2, Code: "int main() {}"})
	require.ErrorIs(t, err, ErrNotEligible)
	require.Zero(t, judgeClient.calls)
}

func TestSubmitValidatesPayload(t *testing.T) {
	judgeClient := &stubJudgeClient{}
	svc := newSubmissionService(&stubSubmissionRepo{}, openExerciseRepo(), judgeClient, nil)

	_, err := svc.Submit(context.Background(), 1, dto.SubmitRequest{GuideNumber: 1, ExerciseNumber: 2})
	require.Error(t, err)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	require.Zero(t, judgeClient.calls)
}

func TestSubmitJudgeUnavailableAppendsNothing(t *testing.T) {
	repo := &stubSubmissionRepo{}
	judgeClient := &stubJudgeClient{err: judge.ErrUnavailable}
	events := &stubPublisher{}
	svc := newSubmissionService(repo, openExerciseRepo(), judgeClient, events)

	_, err := svc.Submit(context.Background(), 1, dto.SubmitRequest{GuideNumber: 1, ExerciseNumber: 2, Code: "int main() {}"})
	require.ErrorIs(t, err, judge.ErrUnavailable)
	require.Empty(t, repo.submissions)
	require.Empty(t, events.subjects)
}

func TestSubmitApprovedPersistsSuccessAndPublishes(t *testing.T) {
	repo := &stubSubmissionRepo{}
	judgeClient := &stubJudgeClient{response: judge.Response{
		Status:      judge.StatusCompleted,
		Compilation: &judge.Compilation{Success: true},
		Execution:   &judge.Execution{TotalTests: 3, PassedTests: 3},
		Score:       100,
	}}
	events := &stubPublisher{}
	svc := newSubmissionService(repo, openExerciseRepo(), judgeClient, events)

	resp, err := svc.Submit(context.Background(), 7, dto.SubmitRequest{GuideNumber: 1, ExerciseNumber: 2, Code: "int main() {}"})
	require.NoError(t, err)
	require.Equal(t, judge.OutcomeApproved, resp.OverallStatus)
	require.True(t, resp.Success)
	require.Equal(t, "judge-sub-1", resp.SubmissionID)

	require.Len(t, repo.submissions, 1)
	appended := repo.submissions[0]
	require.Equal(t, uint(7), appended.StudentID)
	require.True(t, appended.Success)
	require.False(t, appended.SubmittedAt.IsZero())

	require.Equal(t, []string{SubjectSubmissionGraded}, events.subjects)
	var event gradedEvent
	require.NoError(t, json.Unmarshal(events.payloads[0], &event))
	require.Equal(t, uint(7), event.StudentID)
	require.True(t, event.Success)
}

func TestSubmitFailedGradeIsStillAppended(t *testing.T) {
	repo := &stubSubmissionRepo{}
	judgeClient := &stubJudgeClient{response: judge.Response{
		Status:    judge.StatusCompleted,
		Execution: &judge.Execution{TotalTests: 3, PassedTests: 1, FailedTests: 2},
	}}
	svc := newSubmissionService(repo, openExerciseRepo(), judgeClient, nil)

	resp, err := svc.Submit(context.Background(), 7, dto.SubmitRequest{GuideNumber: 1, ExerciseNumber: 2, Code: "int main() {}"})
	require.NoError(t, err)
	require.Equal(t, judge.OutcomeFailed, resp.OverallStatus)
	require.Equal(t, "Failed 2 out of 3 tests", resp.Message)
	require.False(t, resp.Success)

	require.Len(t, repo.submissions, 1)
	require.False(t, repo.submissions[0].Success)
}

func TestSubmitPublisherFailureDoesNotFailSubmission(t *testing.T) {
	repo := &stubSubmissionRepo{}
	judgeClient := &stubJudgeClient{response: judge.Response{
		Status:    judge.StatusCompleted,
		Execution: &judge.Execution{TotalTests: 1, PassedTests: 1},
	}}
	events := &stubPublisher{err: errors.New("broker down")}
	svc := newSubmissionService(repo, openExerciseRepo(), judgeClient, events)

	_, err := svc.Submit(context.Background(), 7, dto.SubmitRequest{GuideNumber: 1, ExerciseNumber: 2, Code: "int main() {}"})
	require.NoError(t, err)
	require.Len(t, repo.submissions, 1)
}

func TestListByStudentMapsNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubSubmissionRepo{submissions: []models.Submission{
		{ID: 1, StudentID: 7, GuideNumber: 1, ExerciseNumber: 2, SubmittedAt: base},
		{ID: 2, StudentID: 7, GuideNumber: 1, ExerciseNumber: 2, Success: true, SubmittedAt: base.Add(time.Hour)},
		{ID: 3, StudentID: 8, GuideNumber: 1, ExerciseNumber: 2, SubmittedAt: base},
	}}
	svc := newSubmissionService(repo, openExerciseRepo(), &stubJudgeClient{}, nil)

	responses, err := svc.ListByStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	require.Equal(t, uint(2), responses[0].ID)
	require.True(t, responses[0].Success)
	require.Equal(t, uint(1), responses[1].ID)
}

func TestGetMapsMissingSubmission(t *testing.T) {
	svc := newSubmissionService(&stubSubmissionRepo{}, openExerciseRepo(), &stubJudgeClient{}, nil)

	_, err := svc.Get(context.Background(), 7, 1, 2, time.Now())
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestJudgeStatusProxiesRawPayload(t *testing.T) {
	raw := json.RawMessage(`{"status":"running"}`)
	svc := newSubmissionService(&stubSubmissionRepo{}, openExerciseRepo(), &stubJudgeClient{status: raw}, nil)

	payload, err := svc.JudgeStatus(context.Background(), "abc")
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"running"}`, string(payload))
}
