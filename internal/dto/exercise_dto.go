package dto

import "time"

// ExerciseEntry is one exercise inside a guide listing.
type ExerciseEntry struct {
	ExerciseNumber    int    `json:"exerciseNumber"`
	Enabled           bool   `json:"enabled"`
	FunctionSignature string `json:"functionSignature,omitempty"`
}

// GuideWithExercises groups the enabled exercises of one enabled guide.
type GuideWithExercises struct {
	GuideNumber int             `json:"guideNumber"`
	Enabled     bool            `json:"enabled"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Exercises   []ExerciseEntry `json:"exercises"`
}
