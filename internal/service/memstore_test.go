package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/workload-api/internal/models"
	"github.com/noah-isme/workload-api/internal/repository"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
)

// memStore mirrors the postgres repositories closely enough to drive the
// services end to end without a database.
type memStore struct {
	mu          sync.Mutex
	terms       map[string]*models.AcademicTerm
	offerings   map[string]*models.CourseOffering
	subjects    map[string]*models.Subject
	programs    map[string]*models.Program
	users       map[string]*models.User
	assignments map[string]*models.TeachingAssignment
	audits      []*models.AuditLog
	failLane    string
}

func newMemStore() *memStore {
	return &memStore{
		terms:       map[string]*models.AcademicTerm{},
		offerings:   map[string]*models.CourseOffering{},
		subjects:    map[string]*models.Subject{},
		programs:    map[string]*models.Program{},
		users:       map[string]*models.User{},
		assignments: map[string]*models.TeachingAssignment{},
	}
}

func (m *memStore) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.audits))
	for _, a := range m.audits {
		actions = append(actions, a.Action)
	}
	return actions
}

func (m *memStore) addUser(u models.User) *models.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleLecturer
	}
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) addSubject(s models.Subject) *models.Subject {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.subjects[s.ID] = &s
	return &s
}

func (m *memStore) addProgram(p models.Program) *models.Program {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.programs[p.ID] = &p
	return &p
}

type memAudit struct{ *memStore }

func (m memAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, log)
	return nil
}

type memTerms struct{ *memStore }

func (m memTerms) List(context.Context) ([]models.AcademicTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AcademicTerm, 0, len(m.terms))
	for _, t := range m.terms {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AcademicYear != out[j].AcademicYear {
			return out[i].AcademicYear > out[j].AcademicYear
		}
		return out[i].Semester < out[j].Semester
	})
	return out, nil
}

func (m memTerms) FindByID(_ context.Context, id string) (*models.AcademicTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m memTerms) FindActive(context.Context) (*models.AcademicTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.terms {
		if t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memTerms) FindByYearSemester(_ context.Context, year, semester int) (*models.AcademicTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.terms {
		if t.AcademicYear == year && t.Semester == semester {
			cp := *t
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memTerms) ExistsByYear(_ context.Context, year int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.terms {
		if t.AcademicYear == year {
			return true, nil
		}
	}
	return false, nil
}

func (m memTerms) CreateYear(_ context.Context, terms []*models.AcademicTerm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range terms {
		for _, existing := range m.terms {
			if existing.AcademicYear == t.AcademicYear && existing.Semester == t.Semester {
				return repository.ErrDuplicate
			}
		}
	}
	for _, t := range terms {
		t.ID = uuid.NewString()
		cp := *t
		m.terms[t.ID] = &cp
	}
	return nil
}

func (m memTerms) SetActive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.terms[id]; !ok {
		return sql.ErrNoRows
	}
	for tid, t := range m.terms {
		t.IsActive = tid == id
	}
	return nil
}

func (m memTerms) UpdateTimeline(_ context.Context, term *models.AcademicTerm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.terms[term.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *term
	m.terms[term.ID] = &cp
	return nil
}

type memOfferings struct{ *memStore }

func (m memOfferings) Upsert(_ context.Context, offering *models.CourseOffering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offerings {
		if o.TermID == offering.TermID && o.SubjectID == offering.SubjectID {
			o.IsOpen = offering.IsOpen
			offering.ID = o.ID
			return nil
		}
	}
	offering.ID = uuid.NewString()
	cp := *offering
	m.offerings[cp.ID] = &cp
	return nil
}

func (m memOfferings) decorate(o models.CourseOffering) models.CourseOffering {
	if s, ok := m.subjects[o.SubjectID]; ok {
		o.SubjectCode, o.SubjectNameTH, o.SubjectNameEN = s.Code, s.NameTH, s.NameEN
		o.ProgramID, o.ResponsibleUserID = s.ProgramID, s.ResponsibleUserID
	}
	return o
}

func (m memOfferings) ListByTerm(_ context.Context, termID string, openOnly bool) ([]models.CourseOffering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CourseOffering
	for _, o := range m.offerings {
		if o.TermID != termID || (openOnly && !o.IsOpen) {
			continue
		}
		out = append(out, m.decorate(*o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

func (m memOfferings) ListByTerms(ctx context.Context, termIDs []string) ([]models.CourseOffering, error) {
	var out []models.CourseOffering
	for _, id := range termIDs {
		rows, _ := m.ListByTerm(ctx, id, false)
		out = append(out, rows...)
	}
	return out, nil
}

type memSubjects struct{ *memStore }

func (m memSubjects) FindByID(_ context.Context, id string) (*models.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m memSubjects) List(context.Context, models.SubjectFilter) ([]models.Subject, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m memSubjects) Create(_ context.Context, subject *models.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subjects {
		if s.Code == subject.Code {
			return repository.ErrDuplicate
		}
	}
	subject.ID = uuid.NewString()
	cp := *subject
	m.subjects[cp.ID] = &cp
	return nil
}

func (m memSubjects) Update(_ context.Context, subject *models.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subjects[subject.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *subject
	m.subjects[cp.ID] = &cp
	return nil
}

func (m memSubjects) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subjects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.subjects, id)
	for aid, a := range m.assignments {
		if a.SubjectID == id {
			delete(m.assignments, aid)
		}
	}
	return nil
}

type memPrograms struct{ *memStore }

func (m memPrograms) FindByID(_ context.Context, id string) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m memPrograms) List(context.Context) ([]models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Program, 0, len(m.programs))
	for _, p := range m.programs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameTH < out[j].NameTH })
	return out, nil
}

func (m memPrograms) Create(_ context.Context, program *models.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	program.ID = uuid.NewString()
	cp := *program
	m.programs[cp.ID] = &cp
	return nil
}

func (m memPrograms) Update(_ context.Context, program *models.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.programs[program.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *program
	m.programs[cp.ID] = &cp
	return nil
}

func (m memPrograms) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.programs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.programs, id)
	for _, s := range m.subjects {
		if s.ProgramID != nil && *s.ProgramID == id {
			s.ProgramID = nil
		}
	}
	return nil
}

type memUsers struct{ *memStore }

func (m memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memUsers) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLogin = &ts
	}
	return nil
}

func (m memUsers) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return memAudit(m).CreateAuditLog(ctx, log)
}

func (m memUsers) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, len(out), nil
}

func (m memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	cp := *user
	m.users[cp.ID] = &cp
	return nil
}

func (m memUsers) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *user
	m.users[cp.ID] = &cp
	return nil
}

func (m memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Active = false
	return nil
}

type memAssignments struct{ *memStore }

func (m memAssignments) Create(_ context.Context, a *models.TeachingAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.SubjectID == a.SubjectID && existing.LecturerID == a.LecturerID &&
			existing.AcademicYear == a.AcademicYear && existing.Semester == a.Semester {
			return repository.ErrDuplicate
		}
	}
	a.ID = uuid.NewString()
	a.Version = 1
	cp := *a
	m.assignments[a.ID] = &cp
	return nil
}

func (m memAssignments) ExistsPair(_ context.Context, subjectID, lecturerID string, year, semester int, anyTerm bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.SubjectID != subjectID || a.LecturerID != lecturerID {
			continue
		}
		if anyTerm || (a.AcademicYear == year && a.Semester == semester) {
			return true, nil
		}
	}
	return false, nil
}

func (m memAssignments) FindByID(_ context.Context, id string) (*models.TeachingAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m memAssignments) view(a models.TeachingAssignment) models.AssignmentView {
	v := models.AssignmentView{TeachingAssignment: a}
	if s, ok := m.subjects[a.SubjectID]; ok {
		v.SubjectCode, v.SubjectNameTH, v.SubjectNameEN = s.Code, s.NameTH, s.NameEN
		v.ProgramID, v.ResponsibleUserID = s.ProgramID, s.ResponsibleUserID
	}
	if u, ok := m.users[a.LecturerID]; ok {
		v.LecturerName = u.FullName
	}
	v.Decorate()
	return v
}

func (m memAssignments) FindView(_ context.Context, id string) (*models.AssignmentView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	v := m.view(*a)
	return &v, nil
}

func (m memAssignments) List(_ context.Context, filter models.AssignmentFilter) ([]models.AssignmentView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AssignmentView
	for _, a := range m.assignments {
		v := m.view(*a)
		switch {
		case filter.SubjectID != "" && a.SubjectID != filter.SubjectID,
			filter.LecturerID != "" && a.LecturerID != filter.LecturerID,
			filter.AcademicYear != 0 && a.AcademicYear != filter.AcademicYear,
			filter.Semester != 0 && a.Semester != filter.Semester,
			filter.ProgramID != "" && (v.ProgramID == nil || *v.ProgramID != filter.ProgramID):
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectCode != out[j].SubjectCode {
			return out[i].SubjectCode < out[j].SubjectCode
		}
		return out[i].LecturerName < out[j].LecturerName
	})
	return out, nil
}

func (m memAssignments) Update(_ context.Context, upd models.AssignmentUpdate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[upd.ID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	if upd.ExpectedVersion > 0 && upd.ExpectedVersion != a.Version {
		return 0, repository.ErrVersionConflict
	}
	a.LectureHours, a.LabHours, a.ExamHours, a.ExamCritiqueHours = upd.LectureHours, upd.LabHours, upd.ExamHours, upd.ExamCritiqueHours
	a.LecturerStatus, a.ResponsibleStatus = upd.LecturerStatus, upd.ResponsibleStatus
	a.HeadApprovalStatus, a.DeanApprovalStatus = upd.HeadApprovalStatus, upd.DeanApprovalStatus
	a.LecturerFeedback = upd.LecturerFeedback
	a.Version++
	return a.Version, nil
}

func (m memAssignments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.assignments, id)
	return nil
}

func (m memAssignments) SetLecturerDecision(_ context.Context, id string, status models.ApprovalStatus, feedback *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok || a.LecturerStatus != models.StatusPending {
		return 0, repository.ErrRequirementNotMet
	}
	a.LecturerStatus = status
	if feedback != nil {
		a.LecturerFeedback = feedback
	}
	a.Version++
	return a.Version, nil
}

// ApplyLaneChange checks every row before writing any, matching the
// transactional repository. failLane simulates a storage error.
func (m memAssignments) ApplyLaneChange(_ context.Context, change models.LaneChange) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLane == string(change.Lane) {
		return 0, fmt.Errorf("update assignment %s: connection reset", change.SubjectID)
	}
	var rows []*models.TeachingAssignment
	for _, a := range m.assignments {
		if a.SubjectID == change.SubjectID && a.AcademicYear == change.AcademicYear && a.Semester == change.Semester {
			rows = append(rows, a)
		}
	}
	if len(rows) == 0 {
		return 0, sql.ErrNoRows
	}
	if change.Require != nil {
		for _, a := range rows {
			if a.Status(change.Require.Lane) != change.Require.Value {
				return 0, repository.ErrRequirementNotMet
			}
		}
	}
	for _, a := range rows {
		a.SetStatus(change.Lane, change.Value)
		for lane, value := range change.Extra {
			a.SetStatus(lane, value)
		}
		a.Version++
	}
	return len(rows), nil
}

type memReports struct{ *memStore }

func (m memReports) YearlyRows(_ context.Context, filter models.ReportFilter) ([]models.YearlyReportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.YearlyReportRow
	for _, a := range m.assignments {
		if a.DeanApprovalStatus != models.StatusApproved || a.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Semester != nil && a.Semester != *filter.Semester {
			continue
		}
		s := m.subjects[a.SubjectID]
		if filter.ProgramID != "" && (s.ProgramID == nil || *s.ProgramID != filter.ProgramID) {
			continue
		}
		row := models.YearlyReportRow{
			AssignmentID:      a.ID,
			AcademicYear:      a.AcademicYear,
			Semester:          a.Semester,
			SubjectID:         a.SubjectID,
			SubjectCode:       s.Code,
			SubjectNameTH:     s.NameTH,
			SubjectNameEN:     s.NameEN,
			ResponsibleUserID: s.ResponsibleUserID,
			LecturerID:        a.LecturerID,
			LecturerName:      m.users[a.LecturerID].FullName,
			LectureHours:      a.LectureHours,
			LabHours:          a.LabHours,
			ExamHours:         a.ExamHours,
			ExamCritiqueHours: a.ExamCritiqueHours,
			DeanStatus:        a.DeanApprovalStatus,
			TotalHours:        a.TotalHours(),
			Role:              models.ResolveAssignmentRole(a.LecturerID, s.ResponsibleUserID),
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

// memCache is a CacheRepository backed by a map of JSON-free values.
type memCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	deletes []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]interface{}{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if board, ok := v.([]models.SubjectBoardEntry); ok {
		if out, ok := dest.(*[]models.SubjectBoardEntry); ok {
			*out = append([]models.SubjectBoardEntry(nil), board...)
			return nil
		}
	}
	return fmt.Errorf("unsupported cache value for %s", key)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
