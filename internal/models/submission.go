package models

import "time"

// Submission is one graded attempt at an exercise. Rows are append-only:
// nothing in the system updates or deletes them once written. The surrogate
// ID is the uniqueness key; SubmittedAt is an ordinary indexed attribute used
// for ordering and lookups.
type Submission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"not null;index" json:"student_id"`
	GuideNumber    int       `gorm:"not null;index:idx_submissions_exercise" json:"guide_number"`
	ExerciseNumber int       `gorm:"not null;index:idx_submissions_exercise" json:"exercise_number"`
	Code           string    `gorm:"type:text;not null" json:"code"`
	Success        bool      `gorm:"not null" json:"success"`
	SubmittedAt    time.Time `gorm:"not null;index" json:"submitted_at"`
}

// Try is the derived OR-aggregate of a student's submissions for one
// exercise. It is recomputed from the submission log on read and never
// persisted as independent state.
type Try struct {
	StudentID      uint
	GuideNumber    int
	ExerciseNumber int
	Success        bool
}

// ExerciseKey identifies an exercise within its guide.
type ExerciseKey struct {
	GuideNumber    int
	ExerciseNumber int
}

// Key returns the exercise the submission targets.
func (s Submission) Key() ExerciseKey {
	return ExerciseKey{GuideNumber: s.GuideNumber, ExerciseNumber: s.ExerciseNumber}
}

// BuildTries collapses a submission log slice into tries, one per
// (student, exercise) pair, success being true if any submission succeeded.
func BuildTries(submissions []Submission) []Try {
	type pair struct {
		student  uint
		exercise ExerciseKey
	}

	index := make(map[pair]int)
	tries := make([]Try, 0)
	for _, submission := range submissions {
		k := pair{student: submission.StudentID, exercise: submission.Key()}
		if i, ok := index[k]; ok {
			if submission.Success {
				tries[i].Success = true
			}
			continue
		}
		index[k] = len(tries)
		tries = append(tries, Try{
			StudentID:      submission.StudentID,
			GuideNumber:    submission.GuideNumber,
			ExerciseNumber: submission.ExerciseNumber,
			Success:        submission.Success,
		})
	}
	return tries
}
