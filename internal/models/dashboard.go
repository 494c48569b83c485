package models

// SubjectBoardEntry summarises every lane of one subject in a term.
type SubjectBoardEntry struct {
	SubjectID         string        `json:"subject_id"`
	SubjectCode       string        `json:"subject_code"`
	SubjectNameTH     string        `json:"subject_name_th"`
	SubjectNameEN     string        `json:"subject_name_en"`
	ProgramID         *string       `json:"program_id,omitempty"`
	ResponsibleUserID *string       `json:"responsible_user_id,omitempty"`
	Rows              int           `json:"rows"`
	Instructors       []string      `json:"instructors"`
	TotalHours        float64       `json:"total_hours"`
	Lecturer          DerivedStatus `json:"lecturer_status"`
	Responsible       DerivedStatus `json:"responsible_status"`
	Head              DerivedStatus `json:"head_approval_status"`
	Dean              DerivedStatus `json:"dean_approval_status"`
}

// LecturerBoardEntry is one open offering as seen by a lecturer.
type LecturerBoardEntry struct {
	SubjectID     string         `json:"subject_id"`
	SubjectCode   string         `json:"subject_code"`
	SubjectNameTH string         `json:"subject_name_th"`
	SubjectNameEN string         `json:"subject_name_en"`
	Role          AssignmentRole `json:"role"`
	AssignmentID  *string        `json:"assignment_id,omitempty"`
	TotalHours    float64        `json:"total_hours"`
	// MyStatus is the lecturer's own lane; WAITING when no row exists yet.
	MyStatus DerivedStatus `json:"my_status"`
	// SubjectStatus is the dean lane across the whole subject.
	SubjectStatus DerivedStatus `json:"subject_status"`
}
