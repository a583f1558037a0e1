package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ianoniszczuk/leet-pi-sub000/internal/dto"
	"github.com/ianoniszczuk/leet-pi-sub000/internal/models"
)

func newRosterService(students *stubStudentRepo) RosterSyncService {
	return NewRosterSyncService(students, false, "", zerolog.Nop())
}

func TestSyncReconcilesSnapshot(t *testing.T) {
	students := &stubStudentRepo{
		students: []models.Student{
			{ID: 1, Email: "alice@uni.edu", Enabled: true},
			{ID: 2, Email: "bob@uni.edu", Enabled: false},
			{ID: 3, Email: "carol@uni.edu", Enabled: true},
		},
		nextID: 3,
	}
	svc := newRosterService(students)

	result, err := svc.Sync(context.Background(), []dto.RosterRow{
		{Email: "alice@uni.edu"},
		{Email: "bob@uni.edu"},
		{Email: "dave@uni.edu", FirstName: "Dave", LastName: "Doe"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedCount)
	require.Equal(t, 3, result.EnabledCount)
	require.Equal(t, 1, result.DisabledCount)
	require.Equal(t, 3, result.TotalProcessed)
	require.Empty(t, result.Errors)

	bob, ok := students.find("bob@uni.edu")
	require.True(t, ok)
	require.True(t, bob.Enabled)

	carol, ok := students.find("carol@uni.edu")
	require.True(t, ok)
	require.False(t, carol.Enabled)

	dave, ok := students.find("dave@uni.edu")
	require.True(t, ok)
	require.True(t, dave.Enabled)
	require.Equal(t, "Dave Doe", dave.FullName)
}

func TestSyncIsIdempotent(t *testing.T) {
	students := &stubStudentRepo{
		students: []models.Student{
			{ID: 1, Email: "alice@uni.edu", Enabled: true},
			{ID: 2, Email: "bob@uni.edu", Enabled: false},
		},
		nextID: 2,
	}
	svc := newRosterService(students)
	rows := []dto.RosterRow{{Email: "alice@uni.edu"}, {Email: "bob@uni.edu"}}

	first, err := svc.Sync(context.Background(), rows)
	require.NoError(t, err)

	second, err := svc.Sync(context.Background(), rows)
	require.NoError(t, err)
	require.Zero(t, second.CreatedCount)
	require.Zero(t, second.DisabledCount)
	require.Equal(t, first.EnabledCount, second.EnabledCount)
	require.Equal(t, first.TotalProcessed, second.TotalProcessed)
}

func TestSyncDeduplicatesAndLowercases(t *testing.T) {
	students := &stubStudentRepo{}
	svc := newRosterService(students)

	result, err := svc.Sync(context.Background(), []dto.RosterRow{
		{Email: "Alice@Uni.Edu"},
		{Email: "alice@uni.edu"},
		{Email: " alice@uni.edu "},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalProcessed)
	require.Equal(t, 1, result.CreatedCount)

	alice, ok := students.find("alice@uni.edu")
	require.True(t, ok)
	require.Equal(t, "alice@uni.edu", alice.Email)
}

func TestSyncCollectsRowErrorsWithoutAborting(t *testing.T) {
	students := &stubStudentRepo{}
	svc := newRosterService(students)

	result, err := svc.Sync(context.Background(), []dto.RosterRow{
		{Email: "not-an-email"},
		{Email: ""},
		{Email: "valid@uni.edu"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalProcessed)
	require.Equal(t, 1, result.CreatedCount)
	require.Len(t, result.Errors, 2)
	require.Contains(t, result.Errors[0], "invalid email")
}

func TestSyncEmptySnapshotDisablesNobody(t *testing.T) {
	students := &stubStudentRepo{
		students: []models.Student{{ID: 1, Email: "alice@uni.edu", Enabled: true}},
		nextID:   1,
	}
	svc := newRosterService(students)

	result, err := svc.Sync(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, result.TotalProcessed)
	require.Zero(t, result.DisabledCount)
	require.Len(t, result.Errors, 1)

	alice, ok := students.find("alice@uni.edu")
	require.True(t, ok)
	require.True(t, alice.Enabled)
}

func TestSeedRejectsWhenDisabled(t *testing.T) {
	svc := NewRosterSyncService(&stubStudentRepo{}, false, "secret", zerolog.Nop())

	_, err := svc.Seed(context.Background(), "secret", []dto.RosterRow{{Email: "alice@uni.edu"}})
	require.ErrorIs(t, err, ErrSeedDisabled)
}

func TestSeedRejectsBadToken(t *testing.T) {
	svc := NewRosterSyncService(&stubStudentRepo{}, true, "secret", zerolog.Nop())

	_, err := svc.Seed(context.Background(), "wrong", []dto.RosterRow{{Email: "alice@uni.edu"}})
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedRunsSyncWithValidToken(t *testing.T) {
	students := &stubStudentRepo{}
	svc := NewRosterSyncService(students, true, "secret", zerolog.Nop())

	result, err := svc.Seed(context.Background(), "secret", []dto.RosterRow{{Email: "alice@uni.edu"}})
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedCount)
}
