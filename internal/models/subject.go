package models

import "time"

// Subject is a course taught by one or more lecturers.
type Subject struct {
	ID                string    `db:"id" json:"id"`
	Code              string    `db:"code" json:"code"`
	NameTH            string    `db:"name_th" json:"name_th"`
	NameEN            string    `db:"name_en" json:"name_en"`
	Credit            string    `db:"credit" json:"credit"`
	ProgramID         *string   `db:"program_id" json:"program_id,omitempty"`
	ResponsibleUserID *string   `db:"responsible_user_id" json:"responsible_user_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// IsResponsible reports whether userID is accountable for the subject's data.
func (s *Subject) IsResponsible(userID string) bool {
	return s != nil && s.ResponsibleUserID != nil && *s.ResponsibleUserID == userID
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	ProgramID     string
	ResponsibleID string
	Search        string
	Page          int
	PageSize      int
}
