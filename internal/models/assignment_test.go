package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalHoursCountsCritiqueOneToOne(t *testing.T) {
	a := TeachingAssignment{LectureHours: 30, LabHours: 15, ExamHours: 3, ExamCritiqueHours: 2}
	assert.InDelta(t, 50.0, a.TotalHours(), 0.0001)
}

func TestResolveAssignmentRole(t *testing.T) {
	owner := "u-1"
	assert.Equal(t, AssignmentRoleResponsible, ResolveAssignmentRole("u-1", &owner))
	assert.Equal(t, AssignmentRoleInstructor, ResolveAssignmentRole("u-2", &owner))
	assert.Equal(t, AssignmentRoleInstructor, ResolveAssignmentRole("u-1", nil))
}

func TestAssignmentViewDecorate(t *testing.T) {
	owner := "u-1"
	v := AssignmentView{
		TeachingAssignment: TeachingAssignment{LecturerID: "u-1", LectureHours: 10, LabHours: 5},
		ResponsibleUserID:  &owner,
	}
	v.Decorate()
	assert.Equal(t, AssignmentRoleResponsible, v.Role)
	assert.InDelta(t, 15.0, v.Total, 0.0001)
}

func TestSetStatusRoundTripsEveryLane(t *testing.T) {
	var a TeachingAssignment
	for _, lane := range Lanes {
		a.SetStatus(lane, StatusRejected)
		assert.Equal(t, StatusRejected, a.Status(lane), string(lane))
	}
}
