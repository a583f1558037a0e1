package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/repository"
)

// ErrSeedDisabled indicates the roster seeding endpoint is turned off.
var ErrSeedDisabled = errors.New("roster seeding is disabled")

// ErrSeedUnauthorized indicates the provided seed token is invalid.
var ErrSeedUnauthorized = errors.New("invalid seed token")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RosterSyncService reconciles the roster against an uploaded snapshot.
// Students present in the snapshot end up enabled (created when missing);
// enabled students absent from it are disabled in one bulk operation.
type RosterSyncService interface {
	Sync(ctx context.Context, rows []dto.RosterRow) (dto.RosterSyncResult, error)
	Seed(ctx context.Context, token string, rows []dto.RosterRow) (dto.RosterSyncResult, error)
}

type rosterSyncService struct {
	students    repository.StudentRepository
	seedEnabled bool
	seedToken   string
	logger      zerolog.Logger
}

// NewRosterSyncService constructs the roster reconciliation service.
func NewRosterSyncService(studentRepo repository.StudentRepository, seedEnabled bool, seedToken string, logger zerolog.Logger) RosterSyncService {
	return &rosterSyncService{
		students:    studentRepo,
		seedEnabled: seedEnabled,
		seedToken:   seedToken,
		logger:      logger.With().Str("component", "roster_sync_service").Logger(),
	}
}

// Sync applies the reconciliation inside one transaction so concurrent
// analytics reads never observe a partially applied roster. Row-level
// problems are collected as non-fatal errors; the run always yields a result.
func (s *rosterSyncService) Sync(ctx context.Context, rows []dto.RosterRow) (dto.RosterSyncResult, error) {
	result := dto.RosterSyncResult{Errors: []string{}}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "roster snapshot is empty")
		return result, nil
	}

	emails, names := s.collectEmails(rows, &result)
	result.TotalProcessed = len(emails)

	err := s.students.InTransaction(ctx, func(tx repository.StudentRepository) error {
		for _, email := range emails {
			if err := s.enableOrCreate(ctx, tx, email, names[email], &result); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("error processing email %s: %v", email, err))
				continue
			}
			result.EnabledCount++
		}

		inSnapshot := make(map[string]struct{}, len(emails))
		for _, email := range emails {
			inSnapshot[email] = struct{}{}
		}

		all, err := tx.List(ctx)
		if err != nil {
			return err
		}

		var toDisable []string
		for _, student := range all {
			if !student.Enabled {
				continue
			}
			if _, ok := inSnapshot[strings.ToLower(student.Email)]; !ok {
				toDisable = append(toDisable, student.Email)
			}
		}

		disabled, err := tx.BulkDisable(ctx, toDisable)
		if err != nil {
			return err
		}
		result.DisabledCount = int(disabled)
		return nil
	})
	if err != nil {
		return dto.RosterSyncResult{}, err
	}

	s.logger.Info().
		Int("created", result.CreatedCount).
		Int("enabled", result.EnabledCount).
		Int("disabled", result.DisabledCount).
		Int("errors", len(result.Errors)).
		Msg("roster synchronized")

	return result, nil
}

// Seed runs the same reconciliation behind a token gate, for scheduled or
// bootstrap roster loads.
func (s *rosterSyncService) Seed(ctx context.Context, token string, rows []dto.RosterRow) (dto.RosterSyncResult, error) {
	if !s.seedEnabled {
		return dto.RosterSyncResult{}, ErrSeedDisabled
	}
	if strings.TrimSpace(s.seedToken) == "" || token != s.seedToken {
		return dto.RosterSyncResult{}, ErrSeedUnauthorized
	}
	return s.Sync(ctx, rows)
}

// collectEmails validates, lower-cases and deduplicates the snapshot rows.
// Invalid rows become non-fatal errors and drop out of the working set. The
// returned slice is sorted so runs are deterministic.
func (s *rosterSyncService) collectEmails(rows []dto.RosterRow, result *dto.RosterSyncResult) ([]string, map[string]string) {
	seen := make(map[string]struct{}, len(rows))
	names := make(map[string]string, len(rows))
	emails := make([]string, 0, len(rows))

	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Email))
		if email == "" {
			result.Errors = append(result.Errors, "row without email field")
			continue
		}
		if !emailPattern.MatchString(email) {
			result.Errors = append(result.Errors, fmt.Sprintf("invalid email: %s", email))
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)

		if name := strings.TrimSpace(strings.TrimSpace(row.FirstName) + " " + strings.TrimSpace(row.LastName)); name != "" {
			names[email] = name
		}
	}

	sort.Strings(emails)
	return emails, names
}

func (s *rosterSyncService) enableOrCreate(ctx context.Context, tx repository.StudentRepository, email, fullName string, result *dto.RosterSyncResult) error {
	student, err := tx.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		created := models.Student{Email: email, FullName: fullName, Enabled: true}
		if err := tx.Create(ctx, &created); err != nil {
			return err
		}
		result.CreatedCount++
		return nil
	}

	if !student.Enabled {
		if err := tx.SetEnabledByEmail(ctx, email, true); err != nil {
			return err
		}
	}
	return nil
}
