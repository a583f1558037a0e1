package dto

import (
	"time"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/pkg/judge"
)

// SubmitRequest is a student's attempt at an exercise.
type SubmitRequest struct {
	GuideNumber    int    `json:"guideNumber" validate:"required,min=1"`
	ExerciseNumber int    `json:"exerciseNumber" validate:"required,min=1"`
	Code           string `json:"code" validate:"required"`
}

// SubmitResponse reports the graded outcome of a submission. A failed grade
// is a normal response here; errors are reserved for attempts that could not
// be graded at all.
type SubmitResponse struct {
	SubmissionID     string             `json:"submissionId"`
	OverallStatus    string             `json:"overallStatus"`
	Message          string             `json:"message"`
	Success          bool               `json:"success"`
	Score            float64            `json:"score"`
	TotalTests       int                `json:"totalTests"`
	PassedTests      int                `json:"passedTests"`
	FailedTests      int                `json:"failedTests"`
	CompilationError string             `json:"compilationError,omitempty"`
	TestResults      []judge.TestResult `json:"testResults"`
	ExecutionTime    int64              `json:"executionTime,omitempty"`
	MemoryUsage      int64              `json:"memoryUsage,omitempty"`
	SubmittedAt      time.Time          `json:"submittedAt"`
}

// NewSubmitResponse builds the submit payload from a normalized outcome and
// the appended log row.
func NewSubmitResponse(submissionID string, outcome judge.Outcome, submittedAt time.Time) SubmitResponse {
	return SubmitResponse{
		SubmissionID:     submissionID,
		OverallStatus:    outcome.Status,
		Message:          outcome.Message,
		Success:          outcome.Approved(),
		Score:            outcome.Score,
		TotalTests:       outcome.TotalTests,
		PassedTests:      outcome.PassedTests,
		FailedTests:      outcome.FailedTests,
		CompilationError: outcome.CompilationError,
		TestResults:      outcome.TestResults,
		ExecutionTime:    outcome.ExecutionTime,
		MemoryUsage:      outcome.MemoryUsage,
		SubmittedAt:      submittedAt,
	}
}

// SubmissionResponse is a stored submission as shown to its author.
type SubmissionResponse struct {
	ID             uint      `json:"id"`
	GuideNumber    int       `json:"guideNumber"`
	ExerciseNumber int       `json:"exerciseNumber"`
	Code           string    `json:"code"`
	Success        bool      `json:"success"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// NewSubmissionResponse maps a submission log row to its response shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             submission.ID,
		GuideNumber:    submission.GuideNumber,
		ExerciseNumber: submission.ExerciseNumber,
		Code:           submission.Code,
		Success:        submission.Success,
		SubmittedAt:    submission.SubmittedAt,
	}
}
