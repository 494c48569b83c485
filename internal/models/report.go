package models

import "time"

// ReportFilter selects rows for the yearly report.
type ReportFilter struct {
	AcademicYear int
	Semester     *int
	ProgramID    string
}

// YearlyReportRow is one dean-approved assignment with names joined in.
type YearlyReportRow struct {
	AssignmentID      string         `db:"id" json:"assignment_id"`
	AcademicYear      int            `db:"academic_year" json:"academic_year"`
	Semester          int            `db:"semester" json:"semester"`
	SubjectID         string         `db:"subject_id" json:"subject_id"`
	SubjectCode       string         `db:"subject_code" json:"subject_code"`
	SubjectNameTH     string         `db:"subject_name_th" json:"subject_name_th"`
	SubjectNameEN     string         `db:"subject_name_en" json:"subject_name_en"`
	ProgramName       *string        `db:"program_name" json:"program_name,omitempty"`
	ResponsibleUserID *string        `db:"responsible_user_id" json:"-"`
	LecturerID        string         `db:"lecturer_id" json:"lecturer_id"`
	LecturerName      string         `db:"lecturer_name" json:"lecturer_name"`
	LectureHours      float64        `db:"lecture_hours" json:"lecture_hours"`
	LabHours          float64        `db:"lab_hours" json:"lab_hours"`
	ExamHours         float64        `db:"exam_hours" json:"exam_hours"`
	ExamCritiqueHours float64        `db:"exam_critique_hours" json:"exam_critique_hours"`
	DeanStatus        ApprovalStatus `db:"dean_approval_status" json:"dean_approval_status"`
	TotalHours        float64        `db:"-" json:"total_hours"`
	Role              AssignmentRole `db:"-" json:"role"`
}

// LecturerTotal sums one lecturer's approved hours in a report.
type LecturerTotal struct {
	LecturerID   string  `json:"lecturer_id"`
	LecturerName string  `json:"lecturer_name"`
	Subjects     int     `json:"subjects"`
	TotalHours   float64 `json:"total_hours"`
}

// YearlyReport is the year-end summary built from dean-approved rows only.
type YearlyReport struct {
	AcademicYear int               `json:"academic_year"`
	Semester     *int              `json:"semester,omitempty"`
	ProgramID    string            `json:"program_id,omitempty"`
	Rows         []YearlyReportRow `json:"rows"`
	Totals       []LecturerTotal   `json:"totals"`
	GrandTotal   float64           `json:"grand_total"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// ReportExport describes a rendered report stored for download.
type ReportExport struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	Key       string    `json:"-"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}
