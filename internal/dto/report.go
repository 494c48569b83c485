package dto

// YearlyReportQuery selects dean-approved rows for a report.
type YearlyReportQuery struct {
	AcademicYear int    `form:"academic_year" json:"academic_year" validate:"required,gte=2400,lte=2800"`
	Semester     *int   `form:"semester" json:"semester" validate:"omitempty,min=1,max=3"`
	ProgramID    string `form:"program_id" json:"program_id"`
}

// ExportReportRequest renders a yearly report to a downloadable file.
type ExportReportRequest struct {
	YearlyReportQuery
	Format string `json:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

// SubjectBoardQuery selects the subjects shown on the approval board.
type SubjectBoardQuery struct {
	AcademicYear int    `form:"academic_year" json:"academic_year" validate:"required,gte=2400,lte=2800"`
	Semester     int    `form:"semester" json:"semester" validate:"required,min=1,max=3"`
	ProgramID    string `form:"program_id" json:"program_id"`
}
