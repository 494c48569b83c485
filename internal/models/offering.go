package models

import "time"

// CourseOffering records whether a subject is open in a term. Closing keeps the row.
type CourseOffering struct {
	ID            string `db:"id" json:"id"`
	TermID        string `db:"term_id" json:"term_id"`
	SubjectID     string `db:"subject_id" json:"subject_id"`
	IsOpen        bool   `db:"is_open" json:"is_open"`
	SubjectCode   string `db:"subject_code" json:"subject_code,omitempty"`
	SubjectNameTH string `db:"subject_name_th" json:"subject_name_th,omitempty"`
	SubjectNameEN string `db:"subject_name_en" json:"subject_name_en,omitempty"`
	// ProgramID and ResponsibleUserID are joined from the subject.
	ProgramID         *string   `db:"program_id" json:"program_id,omitempty"`
	ResponsibleUserID *string   `db:"responsible_user_id" json:"responsible_user_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
