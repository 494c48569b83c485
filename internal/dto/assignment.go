package dto

import "github.com/noah-isme/workload-api/internal/models"

// CreateAssignmentRequest adds a lecturer to a subject for one term.
type CreateAssignmentRequest struct {
	SubjectID         string                 `json:"subject_id" validate:"required"`
	LecturerID        string                 `json:"lecturer_id" validate:"required"`
	AcademicYear      int                    `json:"academic_year" validate:"required,gte=2400,lte=2800"`
	Semester          int                    `json:"semester" validate:"required,min=1,max=3"`
	LectureHours      *float64               `json:"lecture_hours" validate:"omitempty,gte=0"`
	LabHours          *float64               `json:"lab_hours" validate:"omitempty,gte=0"`
	ExamHours         *float64               `json:"exam_hours" validate:"omitempty,gte=0"`
	ExamCritiqueHours *float64               `json:"exam_critique_hours" validate:"omitempty,gte=0"`
	LecturerStatus    *models.ApprovalStatus `json:"lecturer_status" validate:"omitempty,lecturer_status"`
}

// UpdateAssignmentRequest edits hours and, optionally, lane statuses. The dean
// lane is only reachable through the dean decision. Version makes the write
// conditional on the row not having changed since it was read.
type UpdateAssignmentRequest struct {
	LectureHours       *float64               `json:"lecture_hours" validate:"omitempty,gte=0"`
	LabHours           *float64               `json:"lab_hours" validate:"omitempty,gte=0"`
	ExamHours          *float64               `json:"exam_hours" validate:"omitempty,gte=0"`
	ExamCritiqueHours  *float64               `json:"exam_critique_hours" validate:"omitempty,gte=0"`
	LecturerStatus     *models.ApprovalStatus `json:"lecturer_status" validate:"omitempty,lecturer_status"`
	ResponsibleStatus  *models.ApprovalStatus `json:"responsible_status" validate:"omitempty,approval_status"`
	HeadApprovalStatus *models.ApprovalStatus `json:"head_approval_status" validate:"omitempty,approval_status"`
	LecturerFeedback   *string                `json:"lecturer_feedback"`
	Version            *int                   `json:"version" validate:"omitempty,gte=1"`
}

// TermQuery selects one academic term by year and semester.
type TermQuery struct {
	AcademicYear int `form:"academic_year" json:"academic_year" validate:"required,gte=2400,lte=2800"`
	Semester     int `form:"semester" json:"semester" validate:"required,min=1,max=3"`
}
