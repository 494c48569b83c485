package models

import "time"

// AssignmentRole is computed at read time and never stored.
type AssignmentRole string

const (
	AssignmentRoleResponsible AssignmentRole = "responsible"
	AssignmentRoleInstructor  AssignmentRole = "instructor"
)

// ResolveAssignmentRole returns responsible when the lecturer is the subject's responsible person.
func ResolveAssignmentRole(lecturerID string, responsibleUserID *string) AssignmentRole {
	if responsibleUserID != nil && *responsibleUserID == lecturerID {
		return AssignmentRoleResponsible
	}
	return AssignmentRoleInstructor
}

// TeachingAssignment is one lecturer's hours on one subject for one term.
type TeachingAssignment struct {
	ID                 string         `db:"id" json:"id"`
	SubjectID          string         `db:"subject_id" json:"subject_id"`
	LecturerID         string         `db:"lecturer_id" json:"lecturer_id"`
	AcademicYear       int            `db:"academic_year" json:"academic_year"`
	Semester           int            `db:"semester" json:"semester"`
	LectureHours       float64        `db:"lecture_hours" json:"lecture_hours"`
	LabHours           float64        `db:"lab_hours" json:"lab_hours"`
	ExamHours          float64        `db:"exam_hours" json:"exam_hours"`
	ExamCritiqueHours  float64        `db:"exam_critique_hours" json:"exam_critique_hours"`
	LecturerStatus     ApprovalStatus `db:"lecturer_status" json:"lecturer_status"`
	ResponsibleStatus  ApprovalStatus `db:"responsible_status" json:"responsible_status"`
	HeadApprovalStatus ApprovalStatus `db:"head_approval_status" json:"head_approval_status"`
	DeanApprovalStatus ApprovalStatus `db:"dean_approval_status" json:"dean_approval_status"`
	LecturerFeedback   *string        `db:"lecturer_feedback" json:"lecturer_feedback,omitempty"`
	CreatedBy          *string        `db:"created_by" json:"created_by,omitempty"`
	Version            int            `db:"version" json:"version"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// TotalHours sums every hour component; critique topics count one hour each.
func (a *TeachingAssignment) TotalHours() float64 {
	return a.LectureHours + a.LabHours + a.ExamHours + a.ExamCritiqueHours
}

// Status returns the value held in lane.
func (a *TeachingAssignment) Status(lane Lane) ApprovalStatus {
	switch lane {
	case LaneLecturer:
		return a.LecturerStatus
	case LaneResponsible:
		return a.ResponsibleStatus
	case LaneHead:
		return a.HeadApprovalStatus
	case LaneDean:
		return a.DeanApprovalStatus
	default:
		return ""
	}
}

// SetStatus writes value into lane.
func (a *TeachingAssignment) SetStatus(lane Lane, value ApprovalStatus) {
	switch lane {
	case LaneLecturer:
		a.LecturerStatus = value
	case LaneResponsible:
		a.ResponsibleStatus = value
	case LaneHead:
		a.HeadApprovalStatus = value
	case LaneDean:
		a.DeanApprovalStatus = value
	}
}

// AssignmentView is an assignment joined with subject and lecturer details.
type AssignmentView struct {
	TeachingAssignment
	SubjectCode       string         `db:"subject_code" json:"subject_code"`
	SubjectNameTH     string         `db:"subject_name_th" json:"subject_name_th"`
	SubjectNameEN     string         `db:"subject_name_en" json:"subject_name_en"`
	ProgramID         *string        `db:"program_id" json:"program_id,omitempty"`
	ResponsibleUserID *string        `db:"responsible_user_id" json:"responsible_user_id,omitempty"`
	LecturerName      string         `db:"lecturer_name" json:"lecturer_name"`
	Role              AssignmentRole `db:"-" json:"role"`
	Total             float64        `db:"-" json:"total_hours"`
}

// Decorate fills the computed role and total.
func (v *AssignmentView) Decorate() {
	v.Role = ResolveAssignmentRole(v.LecturerID, v.ResponsibleUserID)
	v.Total = v.TotalHours()
}

// AssignmentFilter narrows assignment listings. Zero values are ignored.
type AssignmentFilter struct {
	SubjectID    string
	LecturerID   string
	ProgramID    string
	AcademicYear int
	Semester     int
}

// AssignmentUpdate carries the values persisted by an hour edit.
type AssignmentUpdate struct {
	ID                 string
	LectureHours       float64
	LabHours           float64
	ExamHours          float64
	ExamCritiqueHours  float64
	LecturerStatus     ApprovalStatus
	ResponsibleStatus  ApprovalStatus
	HeadApprovalStatus ApprovalStatus
	DeanApprovalStatus ApprovalStatus
	LecturerFeedback   *string
	// ExpectedVersion makes the write conditional when greater than zero.
	ExpectedVersion int
	UpdatedAt       time.Time
}

// LaneChange applies value to lane on every row of a subject in one term.
// Extra lets a decision touch a second lane (chair rejection also rejects the
// responsible lane).
type LaneChange struct {
	SubjectID    string
	AcademicYear int
	Semester     int
	Lane         Lane
	Value        ApprovalStatus
	Extra        map[Lane]ApprovalStatus
	// Require, when set, must hold on every row before any write happens.
	Require *LaneRequirement
}

// LaneRequirement gates a bulk change on the current value of another lane.
type LaneRequirement struct {
	Lane  Lane
	Value ApprovalStatus
}
