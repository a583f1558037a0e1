package models

import "time"

// Guide is a numbered collection of exercises, optionally time-boxed by a
// deadline. A nil deadline means submissions are accepted indefinitely.
type Guide struct {
	GuideNumber int        `gorm:"primaryKey" json:"guide_number"`
	Enabled     bool       `gorm:"not null;default:false" json:"enabled"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Exercises   []Exercise `gorm:"foreignKey:GuideNumber;references:GuideNumber;constraint:OnDelete:CASCADE" json:"exercises,omitempty"`
}

// DeadlinePassed reports whether the guide deadline exists and lies before now.
func (g Guide) DeadlinePassed(now time.Time) bool {
	return g.Deadline != nil && g.Deadline.Before(now)
}

// Exercise is a single gradable problem within a guide, keyed by
// (guide number, exercise number).
type Exercise struct {
	GuideNumber       int    `gorm:"primaryKey" json:"guide_number"`
	ExerciseNumber    int    `gorm:"primaryKey" json:"exercise_number"`
	Enabled           bool   `gorm:"not null;default:false" json:"enabled"`
	FunctionSignature string `gorm:"type:text" json:"function_signature,omitempty"`
}
