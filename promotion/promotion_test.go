package promotion

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/models"
)

// newTestDB เปิด sqlite in-memory แทน Postgres สำหรับเทสต์
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedYear(t *testing.T, db *gorm.DB, year string) models.AcademicYear {
	t.Helper()
	rec := models.AcademicYear{Year: year}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed year %s: %v", year, err)
	}
	return rec
}

func seedTeacher(t *testing.T, db *gorm.DB, code, first, last string) models.Teacher {
	t.Helper()
	rec := models.Teacher{
		TeacherCode: code, Prefix: "นาย", FirstName: first, LastName: last,
		Phone: "0812345678", Email: code + "@school.test", Position: "ครู",
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed teacher %s: %v", code, err)
	}
	return rec
}

var stuSeq int

func seedStudent(t *testing.T, db *gorm.DB, first, last string) models.Student {
	t.Helper()
	stuSeq++
	rec := models.Student{
		NationalID: fmt.Sprintf("110170%07d", stuSeq), StudentCode: fmt.Sprintf("STU%04d", stuSeq),
		Prefix: "ด.ช.", FirstName: first, LastName: last,
		Address: "1/1 ถ.ทดสอบ", Phone: "0898765432", Status: "active",
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed student %s: %v", first, err)
	}
	return rec
}

func seedClassroom(t *testing.T, db *gorm.DB, yearID uint, grade Grade, roomType string, teacherID *uint) models.Classroom {
	t.Helper()
	rec := models.Classroom{
		Grade: string(grade), RoomType: roomType,
		AcademicYearID: yearID, TeacherID: teacherID,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed classroom %s/%s: %v", grade, roomType, err)
	}
	return rec
}

func enroll(t *testing.T, db *gorm.DB, classroomID, studentID uint) {
	t.Helper()
	if err := db.Create(&models.ClassroomStudent{ClassroomID: classroomID, StudentID: studentID}).Error; err != nil {
		t.Fatalf("enroll student %d: %v", studentID, err)
	}
}

func addSecondary(t *testing.T, db *gorm.DB, classroomID, teacherID uint) {
	t.Helper()
	if err := db.Create(&models.ClassroomTeacher{ClassroomID: classroomID, TeacherID: teacherID}).Error; err != nil {
		t.Fatalf("add secondary teacher %d: %v", teacherID, err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	tx := db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func ptr(v uint) *uint { return &v }
