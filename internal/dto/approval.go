package dto

import "github.com/noah-isme/workload-api/internal/models"

// DisputeRequest carries the lecturer's reason for rejecting their row.
type DisputeRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// DecisionRequest is a chair or dean verdict on a subject for one term.
type DecisionRequest struct {
	AcademicYear int                   `json:"academic_year" validate:"required,gte=2400,lte=2800"`
	Semester     int                   `json:"semester" validate:"required,min=1,max=3"`
	Status       models.ApprovalStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// DecisionResult reports how many rows a bulk decision touched.
type DecisionResult struct {
	SubjectID    string                `json:"subject_id"`
	AcademicYear int                   `json:"academic_year"`
	Semester     int                   `json:"semester"`
	Lane         models.Lane           `json:"lane"`
	Status       models.ApprovalStatus `json:"status"`
	Rows         int                   `json:"rows"`
}
