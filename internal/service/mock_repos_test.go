package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"qrattend/internal/events"
	"qrattend/internal/model"
)

// ── Mock AttendanceRepository ──
// 用互斥锁模拟存储层条件写的原子性：判定与更新在同一临界区内完成，
// 并发测试依赖这一点

type mockAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*model.TeacherAttendanceRecord // teacherID|date → record
	counter int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.TeacherAttendanceRecord)}
}

func attKey(teacherID string, date time.Time) string {
	return teacherID + "|" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) GetOrCreate(_ context.Context, schoolID, schoolYearID, teacherID string, date time.Time) (*model.TeacherAttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attKey(teacherID, date)
	if rec, ok := m.records[key]; ok {
		cp := *rec
		return &cp, nil
	}
	m.counter++
	rec := &model.TeacherAttendanceRecord{
		RecordID:     fmt.Sprintf("rec-%d", m.counter),
		SchoolID:     schoolID,
		SchoolYearID: schoolYearID,
		TeacherID:    teacherID,
		RecordDate:   date,
		Status:       model.AttendanceStatusPending,
	}
	m.records[key] = rec
	cp := *rec
	return &cp, nil
}

func (m *mockAttendanceRepo) Get(_ context.Context, _, teacherID string, date time.Time) (*model.TeacherAttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[attKey(teacherID, date)]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) SetTimeInIfUnset(_ context.Context, _, teacherID string, date, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[attKey(teacherID, date)]
	if !ok || rec.TimeIn != nil {
		return false, nil
	}
	t := at
	rec.TimeIn = &t
	return true, nil
}

func (m *mockAttendanceRepo) SetFirstScanIfUnset(_ context.Context, _, teacherID string, date, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[attKey(teacherID, date)]
	if !ok || rec.FirstQualifyingScan != nil || rec.Status != model.AttendanceStatusPending {
		return false, nil
	}
	t := at
	rec.FirstQualifyingScan = &t
	return true, nil
}

func (m *mockAttendanceRepo) FinalizeIfPending(_ context.Context, _, teacherID string, date time.Time, newStatus string, lateMarker, lockedRuleID *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[attKey(teacherID, date)]
	if !ok || rec.Status != model.AttendanceStatusPending {
		return false, nil
	}
	rec.Status = newStatus
	rec.LateMarker = lateMarker
	rec.LockedRuleID = lockedRuleID
	return true, nil
}

func (m *mockAttendanceRepo) SetTimeOut(_ context.Context, _, teacherID string, date, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[attKey(teacherID, date)]; ok {
		t := at
		rec.TimeOut = &t
	}
	return nil
}

func (m *mockAttendanceRepo) CreateAbsent(_ context.Context, schoolID, schoolYearID, teacherID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attKey(teacherID, date)
	if _, ok := m.records[key]; ok {
		return false, nil
	}
	m.counter++
	m.records[key] = &model.TeacherAttendanceRecord{
		RecordID:     fmt.Sprintf("rec-%d", m.counter),
		SchoolID:     schoolID,
		SchoolYearID: schoolYearID,
		TeacherID:    teacherID,
		RecordDate:   date,
		Status:       model.AttendanceStatusAbsent,
	}
	return true, nil
}

func (m *mockAttendanceRepo) ListPending(_ context.Context, schoolID string, date time.Time) ([]model.TeacherAttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TeacherAttendanceRecord
	for _, rec := range m.records {
		if rec.SchoolID == schoolID && rec.RecordDate.Equal(date) && rec.Status == model.AttendanceStatusPending {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, schoolID string, date time.Time) ([]model.TeacherAttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TeacherAttendanceRecord
	for _, rec := range m.records {
		if rec.SchoolID == schoolID && rec.RecordDate.Equal(date) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// get 测试辅助：直接取底层记录快照
func (m *mockAttendanceRepo) get(teacherID string, date time.Time) *model.TeacherAttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[attKey(teacherID, date)]; ok {
		cp := *rec
		return &cp
	}
	return nil
}

// ── Mock TimeRuleRepository ──

type mockTimeRuleRepo struct {
	mu      sync.Mutex
	rules   map[string]*model.TimeRule
	changes []model.TimeRuleChange
}

func newMockTimeRuleRepo() *mockTimeRuleRepo {
	return &mockTimeRuleRepo{rules: make(map[string]*model.TimeRule)}
}

func (m *mockTimeRuleRepo) Create(_ context.Context, rule *model.TimeRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rule.RuleID == "" {
		rule.RuleID = "rule-" + rule.Name
	}
	cp := *rule
	m.rules[rule.RuleID] = &cp
	return nil
}

func (m *mockTimeRuleRepo) GetByID(_ context.Context, schoolID, id string) (*model.TimeRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rules[id]; ok && r.SchoolID == schoolID {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeRuleRepo) GetActive(_ context.Context, schoolID string, asOf time.Time) (*model.TimeRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rules {
		if r.SchoolID == schoolID && r.IsActive && !r.EffectiveDate.After(asOf) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeRuleRepo) List(_ context.Context, schoolID string) ([]model.TimeRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TimeRule
	for _, r := range m.rules {
		if r.SchoolID == schoolID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockTimeRuleRepo) Update(_ context.Context, rule *model.TimeRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rule
	m.rules[rule.RuleID] = &cp
	return nil
}

func (m *mockTimeRuleRepo) Delete(_ context.Context, schoolID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, id)
	return nil
}

func (m *mockTimeRuleRepo) Activate(_ context.Context, schoolID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.rules[id]
	if !ok || target.SchoolID != schoolID {
		return gorm.ErrRecordNotFound
	}
	for _, r := range m.rules {
		if r.SchoolID == schoolID {
			r.IsActive = false
		}
	}
	target.IsActive = true
	return nil
}

func (m *mockTimeRuleRepo) CreateChange(_ context.Context, change *model.TimeRuleChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, *change)
	return nil
}

func (m *mockTimeRuleRepo) ListChanges(_ context.Context, ruleID string) ([]model.TimeRuleChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TimeRuleChange
	for _, ch := range m.changes {
		if ch.RuleID == ruleID {
			out = append(out, ch)
		}
	}
	return out, nil
}

// ── Mock SchoolYearRepository ──

type mockSchoolYearRepo struct {
	years map[string]*model.SchoolYear
}

func newMockSchoolYearRepo() *mockSchoolYearRepo {
	return &mockSchoolYearRepo{years: make(map[string]*model.SchoolYear)}
}

func (m *mockSchoolYearRepo) Create(_ context.Context, year *model.SchoolYear) error {
	if year.SchoolYearID == "" {
		year.SchoolYearID = "year-" + year.Name
	}
	m.years[year.SchoolYearID] = year
	return nil
}

func (m *mockSchoolYearRepo) GetByID(_ context.Context, schoolID, id string) (*model.SchoolYear, error) {
	if y, ok := m.years[id]; ok && y.SchoolID == schoolID {
		return y, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolYearRepo) GetActive(_ context.Context, schoolID string) (*model.SchoolYear, error) {
	for _, y := range m.years {
		if y.SchoolID == schoolID && y.IsActive {
			return y, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolYearRepo) List(_ context.Context, schoolID string) ([]model.SchoolYear, error) {
	var out []model.SchoolYear
	for _, y := range m.years {
		if y.SchoolID == schoolID {
			out = append(out, *y)
		}
	}
	return out, nil
}

func (m *mockSchoolYearRepo) ClearActive(_ context.Context, schoolID string) error {
	for _, y := range m.years {
		if y.SchoolID == schoolID {
			y.IsActive = false
		}
	}
	return nil
}

func (m *mockSchoolYearRepo) Update(_ context.Context, year *model.SchoolYear) error {
	m.years[year.SchoolYearID] = year
	return nil
}

// ── Mock SchoolRepository ──

type mockSchoolRepo struct {
	schools map[string]*model.School
}

func newMockSchoolRepo() *mockSchoolRepo {
	return &mockSchoolRepo{schools: make(map[string]*model.School)}
}

func (m *mockSchoolRepo) Create(_ context.Context, school *model.School) error {
	m.schools[school.SchoolID] = school
	return nil
}

func (m *mockSchoolRepo) GetByID(_ context.Context, id string) (*model.School, error) {
	if s, ok := m.schools[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolRepo) ListActive(_ context.Context) ([]model.School, error) {
	var out []model.School
	for _, s := range m.schools {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListTeachers(_ context.Context, schoolID string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.SchoolID == schoolID && u.Role == model.RoleTeacher && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes  map[string]*model.Class
	teachers map[string][]string // classID → teacherIDs
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{
		classes:  make(map[string]*model.Class),
		teachers: make(map[string][]string),
	}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		class.ClassID = "class-" + class.Name
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, schoolID, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok && c.SchoolID == schoolID {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context, schoolID, schoolYearID string) ([]model.Class, error) {
	var out []model.Class
	for _, c := range m.classes {
		if c.SchoolID != schoolID {
			continue
		}
		if schoolYearID != "" && c.SchoolYearID != schoolYearID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockClassRepo) ListTeacherIDs(_ context.Context, classID string) ([]string, error) {
	return m.teachers[classID], nil
}

func (m *mockClassRepo) AssignTeacher(_ context.Context, classID, teacherID string) error {
	m.teachers[classID] = append(m.teachers[classID], teacherID)
	return nil
}

func (m *mockClassRepo) RemoveTeacher(_ context.Context, classID, teacherID string) error {
	var kept []string
	for _, id := range m.teachers[classID] {
		if id != teacherID {
			kept = append(kept, id)
		}
	}
	m.teachers[classID] = kept
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		student.StudentID = "stu-" + student.LRN
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, schoolID, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok && s.SchoolID == schoolID {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByLRN(_ context.Context, schoolID, lrn string) (*model.Student, error) {
	for _, s := range m.students {
		if s.SchoolID == schoolID && s.LRN == lrn && s.IsActive {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByClass(_ context.Context, classID string) ([]model.Student, error) {
	var out []model.Student
	for _, s := range m.students {
		if s.ClassID == classID && s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

// ── Mock ScanRepository ──

type mockScanRepo struct {
	mu    sync.Mutex
	scans []model.StudentScan
}

func newMockScanRepo() *mockScanRepo {
	return &mockScanRepo{}
}

func (m *mockScanRepo) Create(_ context.Context, scan *model.StudentScan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if scan.ScanID == "" {
		scan.ScanID = fmt.Sprintf("scan-%d", len(m.scans)+1)
	}
	m.scans = append(m.scans, *scan)
	return nil
}

func (m *mockScanRepo) ListByDate(_ context.Context, schoolID string, date time.Time) ([]model.StudentScan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StudentScan
	for _, s := range m.scans {
		if s.SchoolID == schoolID {
			out = append(out, s)
		}
	}
	return out, nil
}

// ── 事件捕获 Publisher ──

type capturePublisher struct {
	mu     sync.Mutex
	events []events.FinalizationEvent
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{}
}

func (p *capturePublisher) Publish(_ context.Context, event *events.FinalizationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
}

// byKind 按事件类型筛选
func (p *capturePublisher) byKind(kind string) []events.FinalizationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.FinalizationEvent
	for _, e := range p.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
