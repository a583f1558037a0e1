package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/observability"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/repository"
	"github.com/ianoniszczuk/leet-pi-sub000/pkg/judge"
)

// ErrNotEligible indicates the targeted exercise cannot receive submissions:
// it does not exist, it or its guide is disabled, or the guide deadline has
// passed. Callers get no finer distinction.
var ErrNotEligible = errors.New("exercise not available for submission")

// ErrSubmissionNotFound indicates the requested submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// EventPublisher publishes grading events for dashboard refresh triggers.
// *nats.Conn satisfies it; a nil publisher disables events.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// SubjectSubmissionGraded is the event subject for appended submissions.
const SubjectSubmissionGraded = "submissions.graded"

// SubmissionService runs the submission pipeline: eligibility gate, judge
// evaluation, outcome normalization and the append to the submission log.
type SubmissionService interface {
	Submit(ctx context.Context, studentID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, studentID uint, guideNumber, exerciseNumber int, submittedAt time.Time) (dto.SubmissionResponse, error)
	JudgeStatus(ctx context.Context, submissionID string) (json.RawMessage, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	exercises   repository.ExerciseRepository
	judge       judge.Client
	events      EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission pipeline service.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, exerciseRepo repository.ExerciseRepository, judgeClient judge.Client, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		exercises:   exerciseRepo,
		judge:       judgeClient,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, studentID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitResponse{}, err
	}

	if err := s.checkEligibility(ctx, payload.GuideNumber, payload.ExerciseNumber); err != nil {
		return dto.SubmitResponse{}, err
	}

	start := s.now()
	submissionID, raw, err := s.judge.Evaluate(ctx, payload.GuideNumber, payload.ExerciseNumber, payload.Code)
	observability.JudgeLatency().Observe(time.Since(start).Seconds())
	if err != nil {
		// Nothing is appended: an attempt we could not grade is not counted.
		s.logger.Error().Err(err).
			Int("guide_number", payload.GuideNumber).
			Int("exercise_number", payload.ExerciseNumber).
			Msg("judge evaluation failed")
		return dto.SubmitResponse{}, err
	}

	outcome := judge.Normalize(raw)
	observability.SubmissionOutcomes().WithLabelValues(outcome.Status).Inc()

	submission := models.Submission{
		StudentID:      studentID,
		GuideNumber:    payload.GuideNumber,
		ExerciseNumber: payload.ExerciseNumber,
		Code:           payload.Code,
		Success:        outcome.Approved(),
	}
	if err := s.submissions.Append(ctx, &submission); err != nil {
		return dto.SubmitResponse{}, err
	}

	s.publishGraded(submission)

	s.logger.Info().
		Uint("student_id", studentID).
		Int("guide_number", payload.GuideNumber).
		Int("exercise_number", payload.ExerciseNumber).
		Str("outcome", outcome.Status).
		Msg("submission graded")

	return dto.NewSubmitResponse(submissionID, outcome, submission.SubmittedAt), nil
}

// checkEligibility is the gate in front of the judge: the exercise must
// exist, both it and its guide must be enabled, and the guide deadline must
// not have passed. All failures collapse into ErrNotEligible.
func (s *submissionService) checkEligibility(ctx context.Context, guideNumber, exerciseNumber int) error {
	exercise, guide, err := s.exercises.GetWithGuide(ctx, guideNumber, exerciseNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEligible
		}
		return err
	}

	if !exercise.Enabled || !guide.Enabled || guide.DeadlinePassed(s.now()) {
		return ErrNotEligible
	}
	return nil
}

func (s *submissionService) publishGraded(submission models.Submission) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(gradedEvent{
		StudentID:      submission.StudentID,
		GuideNumber:    submission.GuideNumber,
		ExerciseNumber: submission.ExerciseNumber,
		Success:        submission.Success,
		SubmittedAt:    submission.SubmittedAt,
	})
	if err != nil {
		return
	}
	if err := s.events.Publish(SubjectSubmissionGraded, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish graded event")
	}
}

type gradedEvent struct {
	StudentID      uint      `json:"studentId"`
	GuideNumber    int       `json:"guideNumber"`
	ExerciseNumber int       `json:"exerciseNumber"`
	Success        bool      `json:"success"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func (s *submissionService) ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission))
	}
	return responses, nil
}

func (s *submissionService) Get(ctx context.Context, studentID uint, guideNumber, exerciseNumber int, submittedAt time.Time) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.FindOne(ctx, studentID, guideNumber, exerciseNumber, submittedAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

// JudgeStatus proxies a status lookup to the judge without normalization.
func (s *submissionService) JudgeStatus(ctx context.Context, submissionID string) (json.RawMessage, error) {
	return s.judge.Status(ctx, submissionID)
}
