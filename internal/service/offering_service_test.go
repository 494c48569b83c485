package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/config"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
)

func TestOfferingServiceSetOfferingIsIdempotent(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()
	subject := env.store.addSubject(models.Subject{Code: "CS101"})
	terms, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2567}, nil)
	require.NoError(t, err)

	open := true
	first, err := env.offerings.SetOffering(ctx, terms[0].ID, subject.ID, dto.SetOfferingRequest{IsOpen: &open}, nil)
	require.NoError(t, err)
	second, err := env.offerings.SetOffering(ctx, terms[0].ID, subject.ID, dto.SetOfferingRequest{IsOpen: &open}, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := env.offerings.ListOfferings(ctx, terms[0].ID)
	require.NoError(t, err)
	require.Len(t, all, 1)

	closed := false
	_, err = env.offerings.SetOffering(ctx, terms[0].ID, subject.ID, dto.SetOfferingRequest{IsOpen: &closed}, nil)
	require.NoError(t, err)

	openOnly, err := env.offerings.ListOpenOfferings(ctx, terms[0].ID)
	require.NoError(t, err)
	assert.Empty(t, openOnly)
	assert.NotNil(t, openOnly)

	all, err = env.offerings.ListOfferings(ctx, terms[0].ID)
	require.NoError(t, err)
	require.Len(t, all, 1, "closing keeps the row")
	assert.False(t, all[0].IsOpen)
	assert.Equal(t, "CS101", all[0].SubjectCode)
}

func TestOfferingServiceDoesNotTouchAssignments(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()
	lecturer := env.store.addUser(models.User{FullName: "L", Active: true})
	subject := env.store.addSubject(models.Subject{Code: "CS101", ResponsibleUserID: &lecturer.ID})
	terms, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2567}, nil)
	require.NoError(t, err)

	row, err := env.assignments.CreateAssignment(ctx, dto.CreateAssignmentRequest{
		SubjectID: subject.ID, LecturerID: lecturer.ID, AcademicYear: 2567, Semester: 1, LectureHours: floatPtr(2),
	}, actorFor(lecturer))
	require.NoError(t, err)

	closed := false
	_, err = env.offerings.SetOffering(ctx, terms[0].ID, subject.ID, dto.SetOfferingRequest{IsOpen: &closed}, nil)
	require.NoError(t, err)

	after, err := env.assignments.GetAssignment(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.Version, after.Version)
	assert.Equal(t, 2.0, after.LectureHours)
}

func TestOfferingServiceErrors(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()
	subject := env.store.addSubject(models.Subject{Code: "CS101"})
	terms, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2567}, nil)
	require.NoError(t, err)
	open := true

	_, err = env.offerings.SetOffering(ctx, terms[0].ID, subject.ID, dto.SetOfferingRequest{}, nil)
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = env.offerings.SetOffering(ctx, "missing", subject.ID, dto.SetOfferingRequest{IsOpen: &open}, nil)
	requireAppError(t, err, appErrors.ErrNotFound)

	_, err = env.offerings.SetOffering(ctx, terms[0].ID, "missing", dto.SetOfferingRequest{IsOpen: &open}, nil)
	requireAppError(t, err, appErrors.ErrNotFound)

	_, err = env.offerings.ListOpenOfferings(ctx, "missing")
	requireAppError(t, err, appErrors.ErrNotFound)
}
