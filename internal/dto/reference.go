package dto

import "github.com/noah-isme/workload-api/internal/models"

// SubjectRequest creates or replaces a subject.
type SubjectRequest struct {
	Code              string  `json:"code" validate:"required,max=32"`
	NameTH            string  `json:"name_th" validate:"required"`
	NameEN            string  `json:"name_en" validate:"required"`
	Credit            string  `json:"credit" validate:"required,max=32"`
	ProgramID         *string `json:"program_id" validate:"omitempty,uuid"`
	ResponsibleUserID *string `json:"responsible_user_id" validate:"omitempty,uuid"`
}

// ProgramRequest creates or replaces a program.
type ProgramRequest struct {
	NameTH         string  `json:"name_th" validate:"required"`
	FoundedYear    *int    `json:"founded_year" validate:"omitempty,gte=2400,lte=2800"`
	DegreeLevel    string  `json:"degree_level" validate:"required,oneof=BACHELOR MASTER DOCTORAL"`
	ProgramChairID *string `json:"program_chair_id" validate:"omitempty,uuid"`
}

// CreateStaffRequest registers a staff account.
type CreateStaffRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=8"`
	FullName  string          `json:"full_name" validate:"required"`
	Role      models.UserRole `json:"role" validate:"required,oneof=ADMIN DEAN LECTURER"`
	ProgramID *string         `json:"program_id" validate:"omitempty,uuid"`
}

// UpdateStaffRequest edits a staff account.
type UpdateStaffRequest struct {
	FullName  *string          `json:"full_name" validate:"omitempty,min=1"`
	Role      *models.UserRole `json:"role" validate:"omitempty,oneof=ADMIN DEAN LECTURER"`
	ProgramID *string          `json:"program_id" validate:"omitempty,uuid"`
	Active    *bool            `json:"active"`
}
