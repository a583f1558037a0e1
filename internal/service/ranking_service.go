package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/repository"
)

// ErrGuideNotFound indicates the guide does not exist.
var ErrGuideNotFound = errors.New("guide not found")

// RankingTopN caps both leaderboards.
const RankingTopN = 5

// RankingService builds per-exercise leaderboards over the submission log.
// Only eligible students with at least one successful submission on the
// exercise are ranked.
type RankingService interface {
	ExerciseRankings(ctx context.Context, guideNumber, exerciseNumber int) (dto.ExerciseRankings, error)
}

type rankingService struct {
	submissions repository.SubmissionRepository
	students    repository.StudentRepository
	exercises   repository.ExerciseRepository
	logger      zerolog.Logger
}

// NewRankingService constructs the ranking service.
func NewRankingService(submissionRepo repository.SubmissionRepository, studentRepo repository.StudentRepository, exerciseRepo repository.ExerciseRepository, logger zerolog.Logger) RankingService {
	return &rankingService{
		submissions: submissionRepo,
		students:    studentRepo,
		exercises:   exerciseRepo,
		logger:      logger.With().Str("component", "ranking_service").Logger(),
	}
}

type rankedStudent struct {
	student        models.Student
	firstSuccessAt time.Time
	attempts       int
}

func (s *rankingService) ExerciseRankings(ctx context.Context, guideNumber, exerciseNumber int) (dto.ExerciseRankings, error) {
	guide, err := s.exercises.GetGuide(ctx, guideNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExerciseRankings{}, ErrGuideNotFound
		}
		return dto.ExerciseRankings{}, err
	}

	students, err := s.students.ListEligible(ctx)
	if err != nil {
		return dto.ExerciseRankings{}, err
	}
	submissions, err := s.submissions.ListByExercise(ctx, guideNumber, exerciseNumber)
	if err != nil {
		return dto.ExerciseRankings{}, err
	}

	ranked := rankStudents(students, submissions)

	rankings := dto.ExerciseRankings{
		HasDeadline:        guide.Deadline != nil,
		FewestAttempts:     fewestAttempts(ranked),
		EarliestCompletion: []dto.RankingEarliestEntry{},
	}
	if guide.Deadline != nil {
		rankings.EarliestCompletion = earliestCompletion(ranked, *guide.Deadline)
	}
	return rankings, nil
}

// rankStudents computes, per eligible student with at least one success, the
// first success instant and the number of attempts up to and including it.
func rankStudents(students []models.Student, submissions []models.Submission) []rankedStudent {
	byID := make(map[uint]models.Student, len(students))
	for _, student := range students {
		byID[student.ID] = student
	}

	firstSuccess := make(map[uint]time.Time)
	for _, submission := range submissions {
		if !submission.Success {
			continue
		}
		if _, eligible := byID[submission.StudentID]; !eligible {
			continue
		}
		if at, ok := firstSuccess[submission.StudentID]; !ok || submission.SubmittedAt.Before(at) {
			firstSuccess[submission.StudentID] = submission.SubmittedAt
		}
	}

	attempts := make(map[uint]int, len(firstSuccess))
	for _, submission := range submissions {
		at, ok := firstSuccess[submission.StudentID]
		if !ok {
			continue
		}
		// The successful attempt itself counts.
		if !submission.SubmittedAt.After(at) {
			attempts[submission.StudentID]++
		}
	}

	ranked := make([]rankedStudent, 0, len(firstSuccess))
	for studentID, at := range firstSuccess {
		ranked = append(ranked, rankedStudent{
			student:        byID[studentID],
			firstSuccessAt: at,
			attempts:       attempts[studentID],
		})
	}
	return ranked
}

func fewestAttempts(ranked []rankedStudent) []dto.RankingFewestEntry {
	sorted := make([]rankedStudent, len(ranked))
	copy(sorted, ranked)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].attempts != sorted[j].attempts {
			return sorted[i].attempts < sorted[j].attempts
		}
		return sorted[i].firstSuccessAt.Before(sorted[j].firstSuccessAt)
	})

	entries := make([]dto.RankingFewestEntry, 0, RankingTopN)
	for i, candidate := range sorted {
		if i == RankingTopN {
			break
		}
		entries = append(entries, dto.RankingFewestEntry{
			Rank:     i + 1,
			FullName: candidate.student.FullName,
			Attempts: candidate.attempts,
		})
	}
	return entries
}

func earliestCompletion(ranked []rankedStudent, deadline time.Time) []dto.RankingEarliestEntry {
	sorted := make([]rankedStudent, len(ranked))
	copy(sorted, ranked)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].firstSuccessAt.Before(sorted[j].firstSuccessAt)
	})

	entries := make([]dto.RankingEarliestEntry, 0, RankingTopN)
	for i, candidate := range sorted {
		if i == RankingTopN {
			break
		}
		entries = append(entries, dto.RankingEarliestEntry{
			Rank:        i + 1,
			FullName:    candidate.student.FullName,
			SubmittedAt: candidate.firstSuccessAt,
			// Negative when the deadline was tightened after the success;
			// surfaced as-is rather than clamped.
			MarginMs: deadline.Sub(candidate.firstSuccessAt).Milliseconds(),
		})
	}
	return entries
}
