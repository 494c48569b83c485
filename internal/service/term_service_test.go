package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/pkg/config"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
)

func TestTermServiceCreateYear(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()

	_, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{}, nil)
	requireAppError(t, err, appErrors.ErrValidation)

	_, err = env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 1999}, nil)
	requireAppError(t, err, appErrors.ErrValidation)

	terms, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2568}, nil)
	require.NoError(t, err)
	require.Len(t, terms, 3)
	for i, term := range terms {
		assert.Equal(t, i+1, term.Semester)
		assert.False(t, term.IsActive)
		assert.Nil(t, term.Step1Start)
	}

	_, err = env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2568}, nil)
	requireAppError(t, err, appErrors.ErrDuplicate)
}

func TestTermServiceActivateKeepsSingleActiveTerm(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()

	terms, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2567}, nil)
	require.NoError(t, err)

	_, err = env.terms.ActivateTerm(ctx, terms[0].ID, nil)
	require.NoError(t, err)
	activated, err := env.terms.ActivateTerm(ctx, terms[1].ID, nil)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	listed, err := env.terms.ListTerms(ctx)
	require.NoError(t, err)
	active := 0
	for _, term := range listed {
		if term.IsActive {
			active++
			assert.Equal(t, terms[1].ID, term.ID)
		}
	}
	assert.Equal(t, 1, active)

	_, err = env.terms.ActivateTerm(ctx, "missing", nil)
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestTermServiceActivateInvalidatesBoards(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()
	terms, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2567}, nil)
	require.NoError(t, err)

	_, err = env.terms.ActivateTerm(ctx, terms[2].ID, nil)
	require.NoError(t, err)
	assert.Contains(t, env.cacheRepo.deletes, subjectBoardCachePattern)
}

func TestTermServiceListTermsIncludesOfferings(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()
	subject := env.store.addSubject(models.Subject{Code: "CS201"})

	older, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2566}, nil)
	require.NoError(t, err)
	_, err = env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2567}, nil)
	require.NoError(t, err)

	closed := false
	_, err = env.offerings.SetOffering(ctx, older[1].ID, subject.ID, dto.SetOfferingRequest{IsOpen: &closed}, nil)
	require.NoError(t, err)

	listed, err := env.terms.ListTerms(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 6)
	assert.Equal(t, 2567, listed[0].AcademicYear)
	assert.Equal(t, 1, listed[0].Semester)
	assert.Equal(t, 2566, listed[5].AcademicYear)

	for _, term := range listed {
		if term.ID == older[1].ID {
			require.Len(t, term.Offerings, 1)
			assert.False(t, term.Offerings[0].IsOpen)
			continue
		}
		assert.Empty(t, term.Offerings)
	}
}

func TestTermServiceUpdateTimelineWarnsButSaves(t *testing.T) {
	env := newTestEnv(t, config.UniqueScopeSubject)
	ctx := context.Background()
	terms, err := env.terms.CreateYear(ctx, dto.CreateYearRequest{AcademicYear: 2567}, nil)
	require.NoError(t, err)

	day := func(d int) *time.Time {
		v := time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	result, err := env.terms.UpdateTimeline(ctx, terms[0].ID, dto.UpdateTimelineRequest{
		Step1Start: day(10),
		Step1End:   day(5),
		Step2Start: day(8),
		Step2End:   day(12),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"step 1 starts after it ends", "step 2 starts before step 1 ends"}, result.Warnings)

	stored, err := env.terms.GetTerm(ctx, terms[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Step1Start)
	assert.True(t, stored.Step1Start.Equal(*day(10)))

	// Absent fields keep their value.
	result, err = env.terms.UpdateTimeline(ctx, terms[0].ID, dto.UpdateTimelineRequest{Step1End: day(11)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"step 2 starts before step 1 ends"}, result.Warnings)
	assert.True(t, result.Term.Step2End.Equal(*day(12)))

	_, err = env.terms.UpdateTimeline(ctx, "missing", dto.UpdateTimelineRequest{}, nil)
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestTimelineWarnings(t *testing.T) {
	at := func(d int) *time.Time {
		v := time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	tests := []struct {
		name string
		term models.AcademicTerm
		want []string
	}{
		{name: "empty", term: models.AcademicTerm{}},
		{
			name: "ordered",
			term: models.AcademicTerm{
				Step1Start: at(1), Step1End: at(2), Step2Start: at(3), Step2End: at(4),
				Step3Start: at(5), Step3End: at(6), Step4Start: at(7), Step4End: at(8),
			},
		},
		{
			name: "touching windows are fine",
			term: models.AcademicTerm{Step1Start: at(1), Step1End: at(3), Step2Start: at(3)},
		},
		{
			name: "last step inverted",
			term: models.AcademicTerm{Step4Start: at(9), Step4End: at(8)},
			want: []string{"step 4 starts after it ends"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimelineWarnings(&tc.term))
		})
	}
}
