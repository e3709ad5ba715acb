package models

import "time"

// Classroom ห้องเรียนของปีการศึกษาหนึ่ง ๆ
// grade เก็บเป็นรหัสระดับชั้น (Level_1..Level_6, Graduated ไม่สร้างห้องจริง)
type Classroom struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Grade          string    `gorm:"size:20;not null;index" json:"grade"`
	RoomType       string    `gorm:"size:50;not null" json:"room_type"` // เช่น "Gifted", "A"
	AcademicYearID uint      `gorm:"not null;index" json:"academic_year_id"`
	TeacherID      *uint     `json:"teacher_id,omitempty"` // ครูประจำชั้นหลัก (optional)
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ClassroomTeacher ครูประจำชั้นรองของห้องเรียน (ครูหลักอยู่บน Classroom)
type ClassroomTeacher struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassroomID uint      `gorm:"not null;uniqueIndex:uq_classroom_teacher" json:"classroom_id"`
	TeacherID   uint      `gorm:"not null;uniqueIndex:uq_classroom_teacher" json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassroomStudent การลงทะเบียนนักเรียนเข้าห้องเรียน (หนึ่งแถวต่อห้องต่อคน)
// unique index คู่ (classroom_id, student_id) รองรับ upsert แบบ DO NOTHING
type ClassroomStudent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassroomID uint      `gorm:"not null;uniqueIndex:uq_classroom_student" json:"classroom_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:uq_classroom_student" json:"student_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
