package dto

import "time"

// StudentProgress is one student's solved count over the enabled exercises.
type StudentProgress struct {
	StudentID      uint   `json:"studentId"`
	FullName       string `json:"fullName"`
	TotalExercises int    `json:"totalExercises"`
	Solved         int    `json:"solved"`
	Progress       int    `json:"progress"`
}

// AvgResolutionTime is the mean time from first attempt to first success,
// in minutes. Nil means no pair qualifies.
type AvgResolutionTime struct {
	AvgMinutes *int `json:"avgMinutes"`
}

// ExerciseAttempts is the average submission count per attempting student
// for one exercise.
type ExerciseAttempts struct {
	GuideNumber    int     `json:"guideNumber"`
	ExerciseNumber int     `json:"exerciseNumber"`
	AvgAttempts    float64 `json:"avgAttempts"`
}

// ActiveStudents counts distinct eligible students with recent submissions.
type ActiveStudents struct {
	Count int `json:"count"`
}

// ExerciseErrorRate ranks an exercise by its share of failed submissions.
type ExerciseErrorRate struct {
	GuideNumber    int     `json:"guideNumber"`
	ExerciseNumber int     `json:"exerciseNumber"`
	ErrorRate      float64 `json:"errorRate"`
	TotalAttempts  int     `json:"totalAttempts"`
}

// StudentAtRisk is an eligible student without a recent successful
// submission. LastSubmissionAt is nil for students who never submitted.
type StudentAtRisk struct {
	StudentID        uint       `json:"studentId"`
	FullName         string     `json:"fullName"`
	LastSubmissionAt *time.Time `json:"lastSubmissionAt"`
}

// ProgressBucket is one 20-point range of the progress distribution.
type ProgressBucket struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// WeeklyActivity is the submission count for one ISO week.
type WeeklyActivity struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// CompletionMatrixEntry holds completion and attempt rates for one enabled
// exercise over the eligible population.
type CompletionMatrixEntry struct {
	GuideNumber    int     `json:"guideNumber"`
	ExerciseNumber int     `json:"exerciseNumber"`
	CompletionRate float64 `json:"completionRate"`
	AttemptedRate  float64 `json:"attemptedRate"`
	TotalStudents  int     `json:"totalStudents"`
}

// MetricsSummary bundles every dashboard metric in one response.
type MetricsSummary struct {
	ProgressByStudent    []StudentProgress       `json:"progressByStudent"`
	AvgResolutionTime    AvgResolutionTime       `json:"avgResolutionTime"`
	AvgAttempts          []ExerciseAttempts      `json:"avgAttemptsByExercise"`
	ActiveStudents       ActiveStudents          `json:"activeStudents"`
	ErrorRateRanking     []ExerciseErrorRate     `json:"errorRateRanking"`
	StudentsAtRisk       []StudentAtRisk         `json:"studentsAtRisk"`
	ProgressDistribution []ProgressBucket        `json:"progressDistribution"`
	WeeklyActivity       []WeeklyActivity        `json:"weeklyActivity"`
	CompletionMatrix     []CompletionMatrixEntry `json:"completionMatrix"`
	GeneratedAt          time.Time               `json:"generatedAt"`
	CacheHit             bool                    `json:"cacheHit,omitempty"`
}
