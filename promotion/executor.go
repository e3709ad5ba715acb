package promotion

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nruangsri/BEPromote/models"
)

// Result สรุปผลการ commit แผนเลื่อนชั้น
type Result struct {
	CreatedRooms  int `json:"created_rooms"`
	MovedStudents int `json:"moved_students"`
}

// ExecutePlan นำแผน (ที่ผู้ใช้แก้ไขแล้ว) มาเขียนจริงใน transaction เดียว
// ตรวจทุกกลุ่มให้ผ่านก่อนเริ่มเขียน — กลุ่มเดียวไม่ผ่าน = ยกเลิกทั้งแผน ไม่มี partial write
//
// ข้อจำกัดที่ทราบ: การ insert ลิงก์นักเรียนเป็น idempotent (ON CONFLICT DO NOTHING)
// จึง retry แผนเดิมซ้ำได้ แต่การสร้างห้องใหม่ไม่ idempotent — การ commit ซ้ำหลัง
// ความล้มเหลวภายนอกอาจได้ห้องซ้ำ และการ run พร้อมกันข้ามปีเป้าหมายเดียวกันไม่ได้ถูกกันไว้
func ExecutePlan(db *gorm.DB, targetYearID uint, groups []PlanGroup) (Result, error) {
	var res Result
	if db == nil || targetYearID == 0 || groups == nil {
		return res, ErrInvalidInput
	}

	// ----- ตรวจก่อนเขียนทั้งหมด -----
	for i := range groups {
		g := &groups[i]
		if len(g.selectedStudents()) == 0 {
			continue // กลุ่มไม่มีนักเรียนที่เลือก = ข้ามทั้งกลุ่ม ไม่ต้องตรวจครู
		}
		if !Valid(g.TargetGrade) {
			return res, &ValidationError{Fields: map[string]string{
				fmt.Sprintf("plan[%d].targetGrade", i): "ระดับชั้นปลายทางไม่ถูกต้อง",
			}}
		}
		if g.TargetGrade == Graduated {
			continue
		}
		if g.TargetRoomID == nil {
			if _, ok := g.teacherAssignment(); !ok {
				return res, &ValidationError{Fields: map[string]string{
					fmt.Sprintf("plan[%d].targetTeacherIds", i): "ห้องใหม่ต้องระบุครูประจำชั้นอย่างน้อย 1 คน",
				}}
			}
		}
	}

	tx := db.Begin()
	if tx.Error != nil {
		return res, tx.Error
	}

	for i := range groups {
		g := &groups[i]
		selected := g.selectedStudents()
		if len(selected) == 0 {
			continue
		}

		if g.TargetGrade == Graduated {
			// จบการศึกษาเป็นสถานะปลายทาง: นับว่าออกจากระบบ ไม่สร้างห้อง/ลิงก์ใด ๆ
			res.MovedStudents += len(selected)
			continue
		}

		room, created, err := resolveTargetRoom(tx, targetYearID, g)
		if err != nil {
			tx.Rollback()
			return Result{}, err
		}
		if created {
			res.CreatedRooms++
		}

		for _, s := range selected {
			link := models.ClassroomStudent{ClassroomID: room.ID, StudentID: s.ID}
			r := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "classroom_id"}, {Name: "student_id"}},
				DoNothing: true,
			}).Create(&link)
			if r.Error != nil {
				tx.Rollback()
				return Result{}, r.Error
			}
			// ลิงก์ที่มีอยู่แล้วถูกข้ามเงียบ ๆ นับเฉพาะแถวที่ insert จริง
			res.MovedStudents += int(r.RowsAffected)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return Result{}, err
	}
	return res, nil
}

// resolveTargetRoom หา/สร้างห้องปลายทางของกลุ่ม พร้อมปรับครูประจำชั้นตามแผน
func resolveTargetRoom(tx *gorm.DB, targetYearID uint, g *PlanGroup) (*models.Classroom, bool, error) {
	if g.TargetRoomID != nil {
		var room models.Classroom
		if err := tx.First(&room, "id = ?", *g.TargetRoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, &ValidationError{Fields: map[string]string{
					"targetRoomId": "ไม่พบห้องปลายทางตามแผน",
				}}
			}
			return nil, false, err
		}
		// ส่งรายชื่อครูมา → เขียนทับทั้งชุด; ไม่ส่งมา → คงครูของห้องเดิมไว้
		if ta, ok := g.teacherAssignment(); ok {
			if err := applyTeacherAssignment(tx, &room, ta); err != nil {
				return nil, false, err
			}
		}
		return &room, false, nil
	}

	ta, _ := g.teacherAssignment() // ผ่านการตรวจแล้วว่าไม่ว่าง
	room := models.Classroom{
		Grade:          string(g.TargetGrade),
		RoomType:       g.RoomType,
		AcademicYearID: targetYearID,
		TeacherID:      &ta.Primary,
	}
	if err := tx.Create(&room).Error; err != nil {
		return nil, false, err
	}
	if err := upsertSecondaryTeachers(tx, room.ID, ta.Secondaries); err != nil {
		return nil, false, err
	}
	return &room, true, nil
}

// applyTeacherAssignment เปลี่ยนครูหลักและแทนที่ชุดครูรองของห้องเดิม
// ใช้ ลบเฉพาะที่หายไป + upsert ที่เหลือ แทน delete-then-recreate ทั้งชุด
func applyTeacherAssignment(tx *gorm.DB, room *models.Classroom, ta TeacherAssignment) error {
	if err := tx.Model(room).Update("teacher_id", ta.Primary).Error; err != nil {
		return err
	}
	del := tx.Where("classroom_id = ?", room.ID)
	if len(ta.Secondaries) > 0 {
		del = del.Where("teacher_id NOT IN ?", ta.Secondaries)
	}
	if err := del.Delete(&models.ClassroomTeacher{}).Error; err != nil {
		return err
	}
	return upsertSecondaryTeachers(tx, room.ID, ta.Secondaries)
}

func upsertSecondaryTeachers(tx *gorm.DB, classroomID uint, teacherIDs []uint) error {
	for _, id := range teacherIDs {
		link := models.ClassroomTeacher{ClassroomID: classroomID, TeacherID: id}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "classroom_id"}, {Name: "teacher_id"}},
			DoNothing: true,
		}).Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
