package promotion

import (
	"errors"
	"testing"

	"github.com/nruangsri/BEPromote/models"
)

func TestExecutePlanInvalidInput(t *testing.T) {
	db := newTestDB(t)
	if _, err := ExecutePlan(db, 0, []PlanGroup{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ExecutePlan(0, ...) error = %v, want ErrInvalidInput", err)
	}
	if _, err := ExecutePlan(db, 1, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ExecutePlan(1, nil) error = %v, want ErrInvalidInput", err)
	}
}

// Scenario A: ห้อง Level_6 เลื่อนเป็นจบการศึกษา — นับว่าย้าย แต่ไม่เขียนอะไรเลย
func TestExecutePlanGraduation(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	tch := seedTeacher(t, db, "T001", "Somchai", "Jaidee")
	room := seedClassroom(t, db, src.ID, Level6, "Gifted", ptr(tch.ID))
	for _, name := range []string{"Anan", "Busaba", "Chai"} {
		s := seedStudent(t, db, name, "Nakrian")
		enroll(t, db, room.ID, s.ID)
	}

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	res, err := ExecutePlan(db, dst.ID, groups)
	if err != nil {
		t.Fatalf("ExecutePlan: %v", err)
	}
	if res.CreatedRooms != 0 || res.MovedStudents != 3 {
		t.Errorf("result = %+v, want 0 rooms / 3 moved", res)
	}
	if n := countRows(t, db, &models.Classroom{}, "academic_year_id = ?", dst.ID); n != 0 {
		t.Errorf("graduation created %d classrooms in target year", n)
	}
}

// Scenario B: สองห้อง Level_1/A รวมเป็นกลุ่มเดียว สร้างห้องใหม่พร้อมครูที่เลือก
func TestExecutePlanCreatesRoom(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	tchX := seedTeacher(t, db, "T001", "Somchai", "Jaidee")
	tchY := seedTeacher(t, db, "T002", "Suda", "Meechai")
	roomA := seedClassroom(t, db, src.ID, Level1, "A", ptr(tchX.ID))
	roomB := seedClassroom(t, db, src.ID, Level1, "A", ptr(tchY.ID))
	for _, name := range []string{"Anan", "Busaba"} {
		s := seedStudent(t, db, name, "Nakrian")
		enroll(t, db, roomA.ID, s.ID)
	}
	for _, name := range []string{"Chai", "Duang", "Ekk"} {
		s := seedStudent(t, db, name, "Nakrian")
		enroll(t, db, roomB.ID, s.ID)
	}

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	// ผู้ใช้เลือกครู X เป็นครูหลักของห้องใหม่
	groups[0].TargetTeacherIDs = []uint{tchX.ID}

	res, err := ExecutePlan(db, dst.ID, groups)
	if err != nil {
		t.Fatalf("ExecutePlan: %v", err)
	}
	if res.CreatedRooms != 1 || res.MovedStudents != 5 {
		t.Errorf("result = %+v, want 1 room / 5 moved", res)
	}

	var created models.Classroom
	if err := db.First(&created, "academic_year_id = ? AND grade = ? AND room_type = ?", dst.ID, string(Level2), "A").Error; err != nil {
		t.Fatalf("created classroom not found: %v", err)
	}
	if created.TeacherID == nil || *created.TeacherID != tchX.ID {
		t.Errorf("primary teacher = %v, want %d", created.TeacherID, tchX.ID)
	}
	if n := countRows(t, db, &models.ClassroomStudent{}, "classroom_id = ?", created.ID); n != 5 {
		t.Errorf("expected 5 links, got %d", n)
	}
}

// Scenario C: ห้องใหม่แต่ไม่ระบุครู → ปฏิเสธก่อนเขียนอะไรทั้งสิ้น
func TestExecutePlanRejectsNewRoomWithoutTeacher(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	room := seedClassroom(t, db, src.ID, Level1, "A", nil)
	s := seedStudent(t, db, "Anan", "Srisuk")
	enroll(t, db, room.ID, s.ID)

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	groups[0].TargetTeacherIDs = []uint{}

	_, err = ExecutePlan(db, dst.ID, groups)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if n := countRows(t, db, &models.Classroom{}, "academic_year_id = ?", dst.ID); n != 0 {
		t.Errorf("rejected plan still created %d classrooms", n)
	}
	if n := countRows(t, db, &models.ClassroomStudent{}, ""); n != 1 {
		t.Errorf("rejected plan changed student links: %d", n)
	}
}

// กลุ่มเดียวพัง = ทั้งแผนต้องไม่ถูกเขียนเลย
func TestExecutePlanAtomicity(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	tch := seedTeacher(t, db, "T001", "Somchai", "Jaidee")

	good := seedClassroom(t, db, src.ID, Level1, "A", ptr(tch.ID))
	bad := seedClassroom(t, db, src.ID, Level2, "A", nil)
	s1 := seedStudent(t, db, "Anan", "Srisuk")
	s2 := seedStudent(t, db, "Busaba", "Thongdee")
	enroll(t, db, good.ID, s1.ID)
	enroll(t, db, bad.ID, s2.ID)

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	for i := range groups {
		if groups[i].SourceGrade == Level1 {
			groups[i].TargetTeacherIDs = []uint{tch.ID}
		} else {
			groups[i].TargetTeacherIDs = []uint{} // กลุ่มนี้ทำให้ทั้งแผนต้องล้ม
		}
	}

	_, err = ExecutePlan(db, dst.ID, groups)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if n := countRows(t, db, &models.Classroom{}, "academic_year_id = ?", dst.ID); n != 0 {
		t.Errorf("failed plan persisted %d classrooms", n)
	}
	if n := countRows(t, db, &models.ClassroomStudent{}, ""); n != 2 {
		t.Errorf("failed plan changed student links: %d", n)
	}
}

// กลุ่มที่ไม่มีนักเรียนถูกเลือก = ข้ามทั้งกลุ่ม (แม้ไม่มีครูก็ไม่ถือว่าผิด)
func TestExecutePlanSkipsUnselectedGroup(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	room := seedClassroom(t, db, src.ID, Level1, "A", nil)
	s := seedStudent(t, db, "Anan", "Srisuk")
	enroll(t, db, room.ID, s.ID)

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	for i := range groups[0].Students {
		groups[0].Students[i].Selected = false
	}
	groups[0].TargetTeacherIDs = []uint{}

	res, err := ExecutePlan(db, dst.ID, groups)
	if err != nil {
		t.Fatalf("ExecutePlan: %v", err)
	}
	if res.CreatedRooms != 0 || res.MovedStudents != 0 {
		t.Errorf("result = %+v, want all-zero", res)
	}
	if n := countRows(t, db, &models.Classroom{}, "academic_year_id = ?", dst.ID); n != 0 {
		t.Errorf("skipped group still created %d classrooms", n)
	}
}

// เขียนทับครูของห้องปลายทางที่มีอยู่ เมื่อส่งรายชื่อครูมา
func TestExecutePlanOverwritesExistingRoomTeachers(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	tchA := seedTeacher(t, db, "T001", "Somchai", "Jaidee")
	tchB := seedTeacher(t, db, "T002", "Suda", "Meechai")
	tchC := seedTeacher(t, db, "T003", "Prasert", "Boonmee")
	tchD := seedTeacher(t, db, "T004", "Malee", "Sukjai")

	srcRoom := seedClassroom(t, db, src.ID, Level1, "A", ptr(tchA.ID))
	dstRoom := seedClassroom(t, db, dst.ID, Level2, "A", ptr(tchA.ID))
	addSecondary(t, db, dstRoom.ID, tchB.ID)
	s := seedStudent(t, db, "Anan", "Srisuk")
	enroll(t, db, srcRoom.ID, s.ID)

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	groups[0].TargetTeacherIDs = []uint{tchC.ID, tchD.ID}

	if _, err := ExecutePlan(db, dst.ID, groups); err != nil {
		t.Fatalf("ExecutePlan: %v", err)
	}

	var room models.Classroom
	if err := db.First(&room, "id = ?", dstRoom.ID).Error; err != nil {
		t.Fatalf("reload room: %v", err)
	}
	if room.TeacherID == nil || *room.TeacherID != tchC.ID {
		t.Errorf("primary = %v, want %d", room.TeacherID, tchC.ID)
	}
	var secs []models.ClassroomTeacher
	if err := db.Where("classroom_id = ?", dstRoom.ID).Find(&secs).Error; err != nil {
		t.Fatalf("load secondaries: %v", err)
	}
	if len(secs) != 1 || secs[0].TeacherID != tchD.ID {
		t.Errorf("secondaries = %+v, want only teacher %d", secs, tchD.ID)
	}
}

// ไม่ส่งรายชื่อครูมา → ครูของห้องเดิมต้องไม่ถูกแตะ
func TestExecutePlanKeepsExistingRoomTeachers(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	tchA := seedTeacher(t, db, "T001", "Somchai", "Jaidee")
	tchB := seedTeacher(t, db, "T002", "Suda", "Meechai")

	srcRoom := seedClassroom(t, db, src.ID, Level1, "A", nil)
	dstRoom := seedClassroom(t, db, dst.ID, Level2, "A", ptr(tchA.ID))
	addSecondary(t, db, dstRoom.ID, tchB.ID)
	s := seedStudent(t, db, "Anan", "Srisuk")
	enroll(t, db, srcRoom.ID, s.ID)

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	groups[0].TargetTeacherIDs = nil

	if _, err := ExecutePlan(db, dst.ID, groups); err != nil {
		t.Fatalf("ExecutePlan: %v", err)
	}

	var room models.Classroom
	if err := db.First(&room, "id = ?", dstRoom.ID).Error; err != nil {
		t.Fatalf("reload room: %v", err)
	}
	if room.TeacherID == nil || *room.TeacherID != tchA.ID {
		t.Errorf("primary changed to %v", room.TeacherID)
	}
	if n := countRows(t, db, &models.ClassroomTeacher{}, "classroom_id = ?", dstRoom.ID); n != 1 {
		t.Errorf("secondary links changed: %d", n)
	}
}

// commit ซ้ำหลังจากเลื่อนชั้นสำเร็จแล้ว: ลิงก์นักเรียนเป็น idempotent
func TestExecutePlanIdempotentRecommit(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	tch := seedTeacher(t, db, "T001", "Somchai", "Jaidee")
	room := seedClassroom(t, db, src.ID, Level1, "A", ptr(tch.ID))
	for _, name := range []string{"Anan", "Busaba"} {
		s := seedStudent(t, db, name, "Nakrian")
		enroll(t, db, room.ID, s.ID)
	}

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	groups[0].TargetTeacherIDs = []uint{tch.ID}
	first, err := ExecutePlan(db, dst.ID, groups)
	if err != nil {
		t.Fatalf("first ExecutePlan: %v", err)
	}
	if first.CreatedRooms != 1 || first.MovedStudents != 2 {
		t.Fatalf("first result = %+v", first)
	}

	// build ใหม่หลัง commit — คราวนี้ห้องปลายทางมีอยู่แล้ว
	groups, err = BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	second, err := ExecutePlan(db, dst.ID, groups)
	if err != nil {
		t.Fatalf("second ExecutePlan: %v", err)
	}
	if second.CreatedRooms != 0 || second.MovedStudents != 0 {
		t.Errorf("second result = %+v, want all-zero", second)
	}
	if n := countRows(t, db, &models.ClassroomStudent{}, ""); n != 4 {
		// 2 ลิงก์ปีต้นทาง + 2 ลิงก์ปีปลายทาง ไม่มีแถวซ้ำ
		t.Errorf("total links = %d, want 4", n)
	}
	if n := countRows(t, db, &models.Classroom{}, "academic_year_id = ?", dst.ID); n != 1 {
		t.Errorf("target rooms = %d, want 1", n)
	}
}

// ส่งแผนเดิมดิบ ๆ ซ้ำ (ไม่ build ใหม่): การสร้างห้องไม่ idempotent — ได้ห้องซ้ำ
// พฤติกรรมนี้เป็นข้อจำกัดที่บันทึกไว้ ไม่ใช่ bug ของเทสต์
func TestExecutePlanRawResubmitDuplicatesRoom(t *testing.T) {
	db := newTestDB(t)
	src := seedYear(t, db, "2025")
	dst := seedYear(t, db, "2026")
	tch := seedTeacher(t, db, "T001", "Somchai", "Jaidee")
	room := seedClassroom(t, db, src.ID, Level1, "A", ptr(tch.ID))
	s := seedStudent(t, db, "Anan", "Srisuk")
	enroll(t, db, room.ID, s.ID)

	groups, err := BuildPlan(db, src.ID, dst.ID)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	groups[0].TargetTeacherIDs = []uint{tch.ID}

	if _, err := ExecutePlan(db, dst.ID, groups); err != nil {
		t.Fatalf("first ExecutePlan: %v", err)
	}
	res, err := ExecutePlan(db, dst.ID, groups)
	if err != nil {
		t.Fatalf("second ExecutePlan: %v", err)
	}
	if res.CreatedRooms != 1 {
		t.Errorf("raw resubmit created %d rooms, want 1 (duplicate)", res.CreatedRooms)
	}
	if n := countRows(t, db, &models.Classroom{}, "academic_year_id = ?", dst.ID); n != 2 {
		t.Errorf("target rooms = %d, want 2", n)
	}
}
