package models

import "time"

// Degree levels offered by programs.
const (
	DegreeBachelor = "BACHELOR"
	DegreeMaster   = "MASTER"
	DegreeDoctoral = "DOCTORAL"
)

// Program owns subjects and names the chair who reviews their workload.
type Program struct {
	ID             string    `db:"id" json:"id"`
	NameTH         string    `db:"name_th" json:"name_th"`
	FoundedYear    *int      `db:"founded_year" json:"founded_year,omitempty"`
	DegreeLevel    string    `db:"degree_level" json:"degree_level"`
	ProgramChairID *string   `db:"program_chair_id" json:"program_chair_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// IsChair reports whether userID chairs the program.
func (p *Program) IsChair(userID string) bool {
	return p != nil && p.ProgramChairID != nil && *p.ProgramChairID == userID
}
