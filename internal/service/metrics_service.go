package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/repository"
)

// Window and cut-off constants shared by every metric. Changing them here
// changes every computation that uses them.
const (
	// AtRiskDays is how long a student may go without a successful
	// submission before being flagged.
	AtRiskDays = 14
	// ActiveStudentDays is the window used to count active students.
	ActiveStudentDays = 7
	// WeeklyEvolutionWeeks is the span of the weekly activity chart,
	// current partial week included.
	WeeklyEvolutionWeeks = 8
	// ErrorRateTopN caps the high-error-rate ranking.
	ErrorRateTopN = 10
)

var progressBuckets = []string{"0-20%", "21-40%", "41-60%", "61-80%", "81-100%"}

// MetricsService computes dashboard analytics over the submission log and
// the roster. Every computation is a pure read: it never writes application
// state and may run concurrently with submissions.
type MetricsService interface {
	ProgressByStudent(ctx context.Context) ([]dto.StudentProgress, error)
	AvgResolutionTime(ctx context.Context) (dto.AvgResolutionTime, error)
	AvgAttemptsByExercise(ctx context.Context) ([]dto.ExerciseAttempts, error)
	ActiveStudents(ctx context.Context) (dto.ActiveStudents, error)
	ErrorRateRanking(ctx context.Context) ([]dto.ExerciseErrorRate, error)
	StudentsAtRisk(ctx context.Context) ([]dto.StudentAtRisk, error)
	ProgressDistribution(ctx context.Context) ([]dto.ProgressBucket, error)
	WeeklyActivity(ctx context.Context) ([]dto.WeeklyActivity, error)
	CompletionMatrix(ctx context.Context) ([]dto.CompletionMatrixEntry, error)
	GetSummary(ctx context.Context) (dto.MetricsSummary, error)
}

type metricsService struct {
	students    repository.StudentRepository
	exercises   repository.ExerciseRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewMetricsService constructs the analytics service. The cache client may
// be nil, which disables summary caching.
func NewMetricsService(studentRepo repository.StudentRepository, exerciseRepo repository.ExerciseRepository, submissionRepo repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MetricsService {
	return &metricsService{
		students:    studentRepo,
		exercises:   exerciseRepo,
		submissions: submissionRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "metrics_service").Logger(),
		now:         time.Now,
	}
}

func (s *metricsService) ProgressByStudent(ctx context.Context) ([]dto.StudentProgress, error) {
	students, err := s.students.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exercises.ListEnabledExercises(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	solvedByStudent := solvedEnabledCounts(submissions, exercises)
	total := len(exercises)

	progress := make([]dto.StudentProgress, 0, len(students))
	for _, student := range students {
		solved := solvedByStudent[student.ID]
		progress = append(progress, dto.StudentProgress{
			StudentID:      student.ID,
			FullName:       student.FullName,
			TotalExercises: total,
			Solved:         solved,
			Progress:       progressPercent(solved, total),
		})
	}
	return progress, nil
}

func (s *metricsService) AvgResolutionTime(ctx context.Context) (dto.AvgResolutionTime, error) {
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return dto.AvgResolutionTime{}, err
	}

	type pairTimes struct {
		firstAttempt time.Time
		firstSuccess time.Time
		solved       bool
	}
	pairs := make(map[string]*pairTimes)

	for _, submission := range submissions {
		key := pairKey(submission.StudentID, submission.Key())
		times, ok := pairs[key]
		if !ok {
			times = &pairTimes{firstAttempt: submission.SubmittedAt}
			pairs[key] = times
		}
		if submission.SubmittedAt.Before(times.firstAttempt) {
			times.firstAttempt = submission.SubmittedAt
		}
		if submission.Success && (!times.solved || submission.SubmittedAt.Before(times.firstSuccess)) {
			times.firstSuccess = submission.SubmittedAt
			times.solved = true
		}
	}

	var totalMinutes float64
	var count int
	for _, times := range pairs {
		if !times.solved {
			continue
		}
		// Pairs solved on the very first attempt are excluded: their zero
		// duration would drag the mean toward zero.
		if !times.firstSuccess.After(times.firstAttempt) {
			continue
		}
		totalMinutes += times.firstSuccess.Sub(times.firstAttempt).Minutes()
		count++
	}

	if count == 0 {
		return dto.AvgResolutionTime{}, nil
	}
	minutes := int(math.Round(totalMinutes / float64(count)))
	return dto.AvgResolutionTime{AvgMinutes: &minutes}, nil
}

func (s *metricsService) AvgAttemptsByExercise(ctx context.Context) ([]dto.ExerciseAttempts, error) {
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[models.ExerciseKey]int)
	attempters := make(map[models.ExerciseKey]map[uint]struct{})
	for _, submission := range submissions {
		key := submission.Key()
		totals[key]++
		if attempters[key] == nil {
			attempters[key] = make(map[uint]struct{})
		}
		attempters[key][submission.StudentID] = struct{}{}
	}

	result := make([]dto.ExerciseAttempts, 0, len(totals))
	for key, total := range totals {
		avg := float64(total) / float64(len(attempters[key]))
		result = append(result, dto.ExerciseAttempts{
			GuideNumber:    key.GuideNumber,
			ExerciseNumber: key.ExerciseNumber,
			AvgAttempts:    math.Round(avg*10) / 10,
		})
	}
	sortByExercise(result, func(e dto.ExerciseAttempts) (int, int) { return e.GuideNumber, e.ExerciseNumber })
	return result, nil
}

func (s *metricsService) ActiveStudents(ctx context.Context) (dto.ActiveStudents, error) {
	students, err := s.students.ListEligible(ctx)
	if err != nil {
		return dto.ActiveStudents{}, err
	}
	since := s.now().AddDate(0, 0, -ActiveStudentDays)
	submissions, err := s.submissions.ListSince(ctx, since)
	if err != nil {
		return dto.ActiveStudents{}, err
	}

	eligible := studentIDSet(students)
	active := make(map[uint]struct{})
	for _, submission := range submissions {
		if _, ok := eligible[submission.StudentID]; ok {
			active[submission.StudentID] = struct{}{}
		}
	}
	return dto.ActiveStudents{Count: len(active)}, nil
}

func (s *metricsService) ErrorRateRanking(ctx context.Context) ([]dto.ExerciseErrorRate, error) {
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[models.ExerciseKey]int)
	failed := make(map[models.ExerciseKey]int)
	for _, submission := range submissions {
		key := submission.Key()
		totals[key]++
		if !submission.Success {
			failed[key]++
		}
	}

	ranking := make([]dto.ExerciseErrorRate, 0, len(totals))
	for key, total := range totals {
		rate := float64(failed[key]) / float64(total)
		ranking = append(ranking, dto.ExerciseErrorRate{
			GuideNumber:    key.GuideNumber,
			ExerciseNumber: key.ExerciseNumber,
			ErrorRate:      math.Round(rate*1000) / 1000,
			TotalAttempts:  total,
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].ErrorRate != ranking[j].ErrorRate {
			return ranking[i].ErrorRate > ranking[j].ErrorRate
		}
		if ranking[i].GuideNumber != ranking[j].GuideNumber {
			return ranking[i].GuideNumber < ranking[j].GuideNumber
		}
		return ranking[i].ExerciseNumber < ranking[j].ExerciseNumber
	})

	if len(ranking) > ErrorRateTopN {
		ranking = ranking[:ErrorRateTopN]
	}
	return ranking, nil
}

func (s *metricsService) StudentsAtRisk(ctx context.Context) ([]dto.StudentAtRisk, error) {
	students, err := s.students.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, -AtRiskDays)
	lastSubmission := make(map[uint]time.Time)
	recentSuccess := make(map[uint]struct{})
	for _, submission := range submissions {
		if last, ok := lastSubmission[submission.StudentID]; !ok || submission.SubmittedAt.After(last) {
			lastSubmission[submission.StudentID] = submission.SubmittedAt
		}
		if submission.Success && !submission.SubmittedAt.Before(cutoff) {
			recentSuccess[submission.StudentID] = struct{}{}
		}
	}

	// Students with zero submissions ever are at risk too.
	atRisk := make([]dto.StudentAtRisk, 0)
	for _, student := range students {
		if _, ok := recentSuccess[student.ID]; ok {
			continue
		}
		entry := dto.StudentAtRisk{StudentID: student.ID, FullName: student.FullName}
		if last, ok := lastSubmission[student.ID]; ok {
			t := last
			entry.LastSubmissionAt = &t
		}
		atRisk = append(atRisk, entry)
	}
	sort.Slice(atRisk, func(i, j int) bool { return atRisk[i].FullName < atRisk[j].FullName })
	return atRisk, nil
}

func (s *metricsService) ProgressDistribution(ctx context.Context) ([]dto.ProgressBucket, error) {
	progress, err := s.ProgressByStudent(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(progressBuckets))
	for _, entry := range progress {
		counts[bucketFor(entry.Progress, entry.TotalExercises)]++
	}

	distribution := make([]dto.ProgressBucket, 0, len(progressBuckets))
	for _, bucket := range progressBuckets {
		distribution = append(distribution, dto.ProgressBucket{Bucket: bucket, Count: counts[bucket]})
	}
	return distribution, nil
}

func (s *metricsService) WeeklyActivity(ctx context.Context) ([]dto.WeeklyActivity, error) {
	cutoff := startOfISOWeek(s.now()).AddDate(0, 0, -7*(WeeklyEvolutionWeeks-1))
	submissions, err := s.submissions.ListSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Time]int)
	for _, submission := range submissions {
		counts[startOfISOWeek(submission.SubmittedAt)]++
	}

	weeks := make([]time.Time, 0, len(counts))
	for week := range counts {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	activity := make([]dto.WeeklyActivity, 0, len(weeks))
	for _, week := range weeks {
		activity = append(activity, dto.WeeklyActivity{Week: isoWeekLabel(week), Count: counts[week]})
	}
	return activity, nil
}

func (s *metricsService) CompletionMatrix(ctx context.Context) ([]dto.CompletionMatrixEntry, error) {
	students, err := s.students.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exercises.ListEnabledExercises(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	eligible := studentIDSet(students)
	population := len(eligible)

	solved := make(map[models.ExerciseKey]map[uint]struct{})
	attempted := make(map[models.ExerciseKey]map[uint]struct{})
	for _, try := range models.BuildTries(submissions) {
		if _, ok := eligible[try.StudentID]; !ok {
			continue
		}
		key := models.ExerciseKey{GuideNumber: try.GuideNumber, ExerciseNumber: try.ExerciseNumber}
		if attempted[key] == nil {
			attempted[key] = make(map[uint]struct{})
		}
		attempted[key][try.StudentID] = struct{}{}
		if try.Success {
			if solved[key] == nil {
				solved[key] = make(map[uint]struct{})
			}
			solved[key][try.StudentID] = struct{}{}
		}
	}

	matrix := make([]dto.CompletionMatrixEntry, 0, len(exercises))
	for _, exercise := range exercises {
		key := models.ExerciseKey{GuideNumber: exercise.GuideNumber, ExerciseNumber: exercise.ExerciseNumber}
		entry := dto.CompletionMatrixEntry{
			GuideNumber:    exercise.GuideNumber,
			ExerciseNumber: exercise.ExerciseNumber,
			TotalStudents:  population,
		}
		if population > 0 {
			entry.CompletionRate = math.Round(float64(len(solved[key]))/float64(population)*1000) / 1000
			entry.AttemptedRate = math.Round(float64(len(attempted[key]))/float64(population)*1000) / 1000
		}
		matrix = append(matrix, entry)
	}
	return matrix, nil
}

// GetSummary aggregates every metric, serving from the cache when possible.
func (s *metricsService) GetSummary(ctx context.Context) (dto.MetricsSummary, error) {
	const cacheKey = "metrics:summary"
	tracer := otel.Tracer("github.com/ianoniszczuk/leet-pi-sub000/internal/service/metrics")
	ctx, span := tracer.Start(ctx, "metrics.aggregate")
	span.SetAttributes(attribute.String("metrics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var summary dto.MetricsSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				summary.CacheHit = true
				span.SetAttributes(attribute.Bool("metrics.cache_hit", true))
				return summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read metrics cache")
			span.RecordError(err)
		}
	}

	summary, err := s.buildSummary(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "metrics_aggregation_failed")
		return dto.MetricsSummary{}, err
	}
	span.SetAttributes(attribute.Int("metrics.students", len(summary.ProgressByStudent)))

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store metrics cache")
				span.RecordError(err)
			}
		}
	}
	return summary, nil
}

func (s *metricsService) buildSummary(ctx context.Context) (dto.MetricsSummary, error) {
	summary := dto.MetricsSummary{GeneratedAt: s.now()}
	var err error

	if summary.ProgressByStudent, err = s.ProgressByStudent(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.AvgResolutionTime, err = s.AvgResolutionTime(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.AvgAttempts, err = s.AvgAttemptsByExercise(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.ActiveStudents, err = s.ActiveStudents(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.ErrorRateRanking, err = s.ErrorRateRanking(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.StudentsAtRisk, err = s.StudentsAtRisk(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.ProgressDistribution, err = s.ProgressDistribution(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.WeeklyActivity, err = s.WeeklyActivity(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	if summary.CompletionMatrix, err = s.CompletionMatrix(ctx); err != nil {
		return dto.MetricsSummary{}, err
	}
	return summary, nil
}

// solvedEnabledCounts counts, per student, distinct enabled exercises with a
// successful try. Capping at enabled exercises keeps solved <= total even
// when old submissions target since-disabled exercises.
func solvedEnabledCounts(submissions []models.Submission, enabled []models.Exercise) map[uint]int {
	enabledSet := make(map[models.ExerciseKey]struct{}, len(enabled))
	for _, exercise := range enabled {
		enabledSet[models.ExerciseKey{GuideNumber: exercise.GuideNumber, ExerciseNumber: exercise.ExerciseNumber}] = struct{}{}
	}

	solved := make(map[uint]int)
	for _, try := range models.BuildTries(submissions) {
		if !try.Success {
			continue
		}
		key := models.ExerciseKey{GuideNumber: try.GuideNumber, ExerciseNumber: try.ExerciseNumber}
		if _, ok := enabledSet[key]; ok {
			solved[try.StudentID]++
		}
	}
	return solved
}

func progressPercent(solved, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(solved) / float64(total) * 100))
}

func bucketFor(progress, total int) string {
	switch {
	case total == 0, progress <= 20:
		return progressBuckets[0]
	case progress <= 40:
		return progressBuckets[1]
	case progress <= 60:
		return progressBuckets[2]
	case progress <= 80:
		return progressBuckets[3]
	default:
		return progressBuckets[4]
	}
}

func studentIDSet(students []models.Student) map[uint]struct{} {
	set := make(map[uint]struct{}, len(students))
	for _, student := range students {
		set[student.ID] = struct{}{}
	}
	return set
}

func pairKey(studentID uint, key models.ExerciseKey) string {
	return fmt.Sprintf("%d:%d-%d", studentID, key.GuideNumber, key.ExerciseNumber)
}

func startOfISOWeek(t time.Time) time.Time {
	utc := t.UTC()
	weekday := int(utc.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := utc.AddDate(0, 0, -(weekday - 1))
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}

func isoWeekLabel(weekStart time.Time) string {
	year, week := weekStart.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func sortByExercise[T any](items []T, key func(T) (int, int)) {
	sort.Slice(items, func(i, j int) bool {
		gi, ei := key(items[i])
		gj, ej := key(items[j])
		if gi != gj {
			return gi < gj
		}
		return ei < ej
	})
}
