package dto

import (
	"time"

	"github.com/noah-isme/workload-api/internal/models"
)

// CreateYearRequest creates the three semesters of an academic year.
type CreateYearRequest struct {
	AcademicYear int `json:"academic_year" validate:"required,gte=2400,lte=2800"`
}

// UpdateTimelineRequest patches phase windows. Absent fields keep their value.
type UpdateTimelineRequest struct {
	Step1Start *time.Time `json:"step1_start"`
	Step1End   *time.Time `json:"step1_end"`
	Step2Start *time.Time `json:"step2_start"`
	Step2End   *time.Time `json:"step2_end"`
	Step3Start *time.Time `json:"step3_start"`
	Step3End   *time.Time `json:"step3_end"`
	Step4Start *time.Time `json:"step4_start"`
	Step4End   *time.Time `json:"step4_end"`
}

// TimelineResult is the updated term plus ordering warnings.
type TimelineResult struct {
	Term     *models.AcademicTerm `json:"term"`
	Warnings []string             `json:"warnings,omitempty"`
}

// SetOfferingRequest opens or closes a subject in a term.
type SetOfferingRequest struct {
	IsOpen *bool `json:"is_open" validate:"required"`
}
