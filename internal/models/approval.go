package models

// ApprovalStatus is the value of one approval lane on an assignment row.
type ApprovalStatus string

const (
	// StatusDraft is only valid in the lecturer lane: the row has not been sent yet.
	StatusDraft    ApprovalStatus = "DRAFT"
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// Valid reports whether s is a known status. DRAFT is accepted only when allowDraft is set.
func (s ApprovalStatus) Valid(allowDraft bool) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	case StatusDraft:
		return allowDraft
	default:
		return false
	}
}

// Lane identifies one of the four status fields on a teaching assignment.
type Lane string

const (
	LaneLecturer    Lane = "lecturer"
	LaneResponsible Lane = "responsible"
	LaneHead        Lane = "head"
	LaneDean        Lane = "dean"
)

// Lanes lists every lane in approval order.
var Lanes = []Lane{LaneLecturer, LaneResponsible, LaneHead, LaneDean}

// DerivedStatus is a read-time aggregate over a set of lane values. It is never stored.
type DerivedStatus string

const (
	DerivedApproved DerivedStatus = "APPROVED"
	DerivedRejected DerivedStatus = "REJECTED"
	DerivedPending  DerivedStatus = "PENDING"
	DerivedWaiting  DerivedStatus = "WAITING"
)

// DeriveStatus folds lane values with the precedence APPROVED > REJECTED > PENDING > WAITING.
//
// A non-empty set where every value is APPROVED is APPROVED. Otherwise any
// REJECTED wins. Otherwise any submitted value (PENDING or APPROVED) makes it
// PENDING. An empty set, or one holding only DRAFT, is WAITING: a missing row
// means "not started", never PENDING.
func DeriveStatus(statuses []ApprovalStatus) DerivedStatus {
	if len(statuses) == 0 {
		return DerivedWaiting
	}
	allApproved := true
	rejected := false
	submitted := false
	for _, s := range statuses {
		switch s {
		case StatusApproved:
			submitted = true
		case StatusRejected:
			rejected = true
			allApproved = false
		case StatusPending:
			submitted = true
			allApproved = false
		default:
			allApproved = false
		}
	}
	switch {
	case allApproved:
		return DerivedApproved
	case rejected:
		return DerivedRejected
	case submitted:
		return DerivedPending
	default:
		return DerivedWaiting
	}
}

// DeriveLane derives the status of lane across rows.
func DeriveLane(rows []TeachingAssignment, lane Lane) DerivedStatus {
	statuses := make([]ApprovalStatus, 0, len(rows))
	for i := range rows {
		statuses = append(statuses, rows[i].Status(lane))
	}
	return DeriveStatus(statuses)
}
