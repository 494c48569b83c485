package models

import "time"

// Semesters of an academic year; 3 is the summer session.
const (
	SemesterFirst  = 1
	SemesterSecond = 2
	SemesterSummer = 3
)

// Buddhist-calendar bounds accepted when a year is created.
const (
	MinAcademicYear = 2400
	MaxAcademicYear = 2800
)

// AcademicTerm is one semester of an academic year with its four approval windows.
type AcademicTerm struct {
	ID           string     `db:"id" json:"id"`
	AcademicYear int        `db:"academic_year" json:"academic_year"`
	Semester     int        `db:"semester" json:"semester"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	Step1Start   *time.Time `db:"step1_start" json:"step1_start,omitempty"`
	Step1End     *time.Time `db:"step1_end" json:"step1_end,omitempty"`
	Step2Start   *time.Time `db:"step2_start" json:"step2_start,omitempty"`
	Step2End     *time.Time `db:"step2_end" json:"step2_end,omitempty"`
	Step3Start   *time.Time `db:"step3_start" json:"step3_start,omitempty"`
	Step3End     *time.Time `db:"step3_end" json:"step3_end,omitempty"`
	Step4Start   *time.Time `db:"step4_start" json:"step4_start,omitempty"`
	Step4End     *time.Time `db:"step4_end" json:"step4_end,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// PhaseWindow is a start/end pair for one approval step.
type PhaseWindow struct {
	Step  int        `json:"step"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Windows returns the four phase windows in order.
func (t *AcademicTerm) Windows() []PhaseWindow {
	return []PhaseWindow{
		{Step: 1, Start: t.Step1Start, End: t.Step1End},
		{Step: 2, Start: t.Step2Start, End: t.Step2End},
		{Step: 3, Start: t.Step3Start, End: t.Step3End},
		{Step: 4, Start: t.Step4Start, End: t.Step4End},
	}
}

// TermWithOfferings is a term together with its course offerings.
type TermWithOfferings struct {
	AcademicTerm
	Offerings []CourseOffering `json:"offerings"`
}
