package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/repository"
	"github.com/ianoniszczuk/leet-pi-sub000/pkg/judge"
)

type stubSubmissionRepo struct {
	submissions []models.Submission
	err         error
	nextID      uint
}

func (s *stubSubmissionRepo) Append(ctx context.Context, submission *models.Submission) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	submission.ID = s.nextID
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	s.submissions = append(s.submissions, *submission)
	return nil
}

func (s *stubSubmissionRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Submission, 0)
	for _, submission := range s.submissions {
		if submission.StudentID == studentID {
			out = append(out, submission)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (s *stubSubmissionRepo) FindOne(ctx context.Context, studentID uint, guideNumber, exerciseNumber int, submittedAt time.Time) (models.Submission, error) {
	if s.err != nil {
		return models.Submission{}, s.err
	}
	for _, submission := range s.submissions {
		if submission.StudentID == studentID &&
			submission.GuideNumber == guideNumber &&
			submission.ExerciseNumber == exerciseNumber &&
			submission.SubmittedAt.Equal(submittedAt) {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (s *stubSubmissionRepo) ListByExercise(ctx context.Context, guideNumber, exerciseNumber int) ([]models.Submission, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Submission, 0)
	for _, submission := range s.submissions {
		if submission.GuideNumber == guideNumber && submission.ExerciseNumber == exerciseNumber {
			out = append(out, submission)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *stubSubmissionRepo) ListAll(ctx context.Context) ([]models.Submission, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Submission, len(s.submissions))
	copy(out, s.submissions)
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *stubSubmissionRepo) ListSince(ctx context.Context, since time.Time) ([]models.Submission, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Submission, 0)
	for _, submission := range s.submissions {
		if !submission.SubmittedAt.Before(since) {
			out = append(out, submission)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

type stubExerciseRepo struct {
	guides    map[int]models.Guide
	exercises map[models.ExerciseKey]models.Exercise
	err       error
}

func (s *stubExerciseRepo) GetGuide(ctx context.Context, guideNumber int) (models.Guide, error) {
	if s.err != nil {
		return models.Guide{}, s.err
	}
	guide, ok := s.guides[guideNumber]
	if !ok {
		return models.Guide{}, gorm.ErrRecordNotFound
	}
	return guide, nil
}

func (s *stubExerciseRepo) GetWithGuide(ctx context.Context, guideNumber, exerciseNumber int) (models.Exercise, models.Guide, error) {
	if s.err != nil {
		return models.Exercise{}, models.Guide{}, s.err
	}
	exercise, ok := s.exercises[models.ExerciseKey{GuideNumber: guideNumber, ExerciseNumber: exerciseNumber}]
	if !ok {
		return models.Exercise{}, models.Guide{}, gorm.ErrRecordNotFound
	}
	guide, err := s.GetGuide(ctx, guideNumber)
	if err != nil {
		return models.Exercise{}, models.Guide{}, err
	}
	return exercise, guide, nil
}

func (s *stubExerciseRepo) ListEnabledGuides(ctx context.Context) ([]models.Guide, error) {
	if s.err != nil {
		return nil, s.err
	}
	guides := make([]models.Guide, 0)
	for _, guide := range s.guides {
		if guide.Enabled {
			guides = append(guides, guide)
		}
	}
	sort.Slice(guides, func(i, j int) bool { return guides[i].GuideNumber < guides[j].GuideNumber })
	return guides, nil
}

func (s *stubExerciseRepo) ListEnabledExercises(ctx context.Context) ([]models.Exercise, error) {
	if s.err != nil {
		return nil, s.err
	}
	exercises := make([]models.Exercise, 0)
	for key, exercise := range s.exercises {
		if !exercise.Enabled {
			continue
		}
		if guide, ok := s.guides[key.GuideNumber]; !ok || !guide.Enabled {
			continue
		}
		exercises = append(exercises, exercise)
	}
	sort.Slice(exercises, func(i, j int) bool {
		if exercises[i].GuideNumber != exercises[j].GuideNumber {
			return exercises[i].GuideNumber < exercises[j].GuideNumber
		}
		return exercises[i].ExerciseNumber < exercises[j].ExerciseNumber
	})
	return exercises, nil
}

type stubStudentRepo struct {
	students []models.Student
	err      error
	nextID   uint
}

func (s *stubStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	if s.err != nil {
		return models.Student{}, s.err
	}
	for _, student := range s.students {
		if student.ID == id {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (s *stubStudentRepo) GetByEmail(ctx context.Context, email string) (models.Student, error) {
	if s.err != nil {
		return models.Student{}, s.err
	}
	for _, student := range s.students {
		if strings.EqualFold(student.Email, email) {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (s *stubStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	student.ID = s.nextID
	student.Email = strings.ToLower(student.Email)
	s.students = append(s.students, *student)
	return nil
}

func (s *stubStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Student, len(s.students))
	copy(out, s.students)
	return out, nil
}

func (s *stubStudentRepo) ListEligible(ctx context.Context) ([]models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Student, 0)
	for _, student := range s.students {
		if student.IsEligible() {
			out = append(out, student)
		}
	}
	return out, nil
}

func (s *stubStudentRepo) SetEnabledByEmail(ctx context.Context, email string, enabled bool) error {
	if s.err != nil {
		return s.err
	}
	for i := range s.students {
		if strings.EqualFold(s.students[i].Email, email) {
			s.students[i].Enabled = enabled
		}
	}
	return nil
}

func (s *stubStudentRepo) BulkDisable(ctx context.Context, emails []string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	targets := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		targets[strings.ToLower(email)] = struct{}{}
	}
	var affected int64
	for i := range s.students {
		if !s.students[i].Enabled {
			continue
		}
		if _, ok := targets[strings.ToLower(s.students[i].Email)]; ok {
			s.students[i].Enabled = false
			affected++
		}
	}
	return affected, nil
}

func (s *stubStudentRepo) InTransaction(ctx context.Context, fn func(repository.StudentRepository) error) error {
	return fn(s)
}

func (s *stubStudentRepo) find(email string) (models.Student, bool) {
	for _, student := range s.students {
		if strings.EqualFold(student.Email, email) {
			return student, true
		}
	}
	return models.Student{}, false
}

type stubJudgeClient struct {
	response judge.Response
	status   json.RawMessage
	err      error
	calls    int
}

func (s *stubJudgeClient) Evaluate(ctx context.Context, guideNumber, exerciseNumber int, code string) (string, judge.Response, error) {
	s.calls++
	if s.err != nil {
		return "", judge.Response{}, s.err
	}
	return "judge-sub-1", s.response, nil
}

func (s *stubJudgeClient) Status(ctx context.Context, submissionID string) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}

type stubPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (s *stubPublisher) Publish(subject string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.subjects = append(s.subjects, subject)
	s.payloads = append(s.payloads, data)
	return nil
}
