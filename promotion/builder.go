package promotion

import (
	"strings"

	"gorm.io/gorm"

	"github.com/nruangsri/BEPromote/models"
)

// BuildPlan คำนวณแผนเลื่อนชั้นจากปีต้นทางไปปีปลายทาง (อ่านอย่างเดียว ไม่เขียนข้อมูล)
// ปีต้นทางไม่มีห้องเรียน → คืนแผนว่าง ไม่ถือเป็น error
func BuildPlan(db *gorm.DB, sourceYearID, targetYearID uint) ([]PlanGroup, error) {
	if db == nil || sourceYearID == 0 || targetYearID == 0 {
		return nil, ErrInvalidInput
	}

	var sourceRooms []models.Classroom
	if err := db.Where("academic_year_id = ?", sourceYearID).Order("id").Find(&sourceRooms).Error; err != nil {
		return nil, err
	}
	if len(sourceRooms) == 0 {
		return []PlanGroup{}, nil
	}

	var targetRooms []models.Classroom
	if err := db.Where("academic_year_id = ?", targetYearID).Order("id").Find(&targetRooms).Error; err != nil {
		return nil, err
	}

	roomIDs := make([]uint, 0, len(sourceRooms))
	for _, r := range sourceRooms {
		roomIDs = append(roomIDs, r.ID)
	}

	// ครูรองของห้องต้นทางทั้งหมด
	var teacherLinks []models.ClassroomTeacher
	if err := db.Where("classroom_id IN ?", roomIDs).Order("id").Find(&teacherLinks).Error; err != nil {
		return nil, err
	}
	secondariesByRoom := map[uint][]uint{}
	for _, l := range teacherLinks {
		secondariesByRoom[l.ClassroomID] = append(secondariesByRoom[l.ClassroomID], l.TeacherID)
	}

	// นักเรียนที่ลงทะเบียนในห้องต้นทาง
	var enrolls []models.ClassroomStudent
	if err := db.Where("classroom_id IN ?", roomIDs).Order("id").Find(&enrolls).Error; err != nil {
		return nil, err
	}
	studentsByRoom := map[uint][]uint{}
	studentIDSet := map[uint]bool{}
	studentIDs := []uint{}
	for _, l := range enrolls {
		studentsByRoom[l.ClassroomID] = append(studentsByRoom[l.ClassroomID], l.StudentID)
		if !studentIDSet[l.StudentID] {
			studentIDSet[l.StudentID] = true
			studentIDs = append(studentIDs, l.StudentID)
		}
	}

	studentByID := map[uint]models.Student{}
	if len(studentIDs) > 0 {
		var students []models.Student
		if err := db.Where("id IN ?", studentIDs).Find(&students).Error; err != nil {
			return nil, err
		}
		for _, s := range students {
			studentByID[s.ID] = s
		}
	}

	// โหลดชื่อครู (หลัก+รอง) ไว้ประกอบ sourceTeacher
	teacherIDSet := map[uint]bool{}
	teacherIDs := []uint{}
	collect := func(id uint) {
		if id > 0 && !teacherIDSet[id] {
			teacherIDSet[id] = true
			teacherIDs = append(teacherIDs, id)
		}
	}
	for _, r := range sourceRooms {
		if r.TeacherID != nil {
			collect(*r.TeacherID)
		}
		for _, id := range secondariesByRoom[r.ID] {
			collect(id)
		}
	}
	teacherByID := map[uint]models.Teacher{}
	if len(teacherIDs) > 0 {
		var teachers []models.Teacher
		if err := db.Where("id IN ?", teacherIDs).Find(&teachers).Error; err != nil {
			return nil, err
		}
		for _, t := range teachers {
			teacherByID[t.ID] = t
		}
	}

	// ห้องปลายทางที่มีอยู่แล้ว index ด้วย (ชั้น, ประเภทห้อง) พร้อมครูรองของห้อง
	targetIdx := map[groupKey]*models.Classroom{}
	targetRoomIDs := make([]uint, 0, len(targetRooms))
	for i := range targetRooms {
		targetRoomIDs = append(targetRoomIDs, targetRooms[i].ID)
		k := groupKey{Grade(targetRooms[i].Grade), targetRooms[i].RoomType}
		if _, dup := targetIdx[k]; !dup {
			targetIdx[k] = &targetRooms[i]
		}
	}
	targetSecondaries := map[uint][]uint{}
	if len(targetRoomIDs) > 0 {
		var links []models.ClassroomTeacher
		if err := db.Where("classroom_id IN ?", targetRoomIDs).Order("id").Find(&links).Error; err != nil {
			return nil, err
		}
		for _, l := range links {
			targetSecondaries[l.ClassroomID] = append(targetSecondaries[l.ClassroomID], l.TeacherID)
		}
	}

	ix := newGroupIndex()
	seenTeacher := map[groupKey]map[uint]bool{}
	seenStudent := map[groupKey]map[uint]bool{}
	namesByKey := map[groupKey][]string{}

	for i := range sourceRooms {
		room := &sourceRooms[i]
		target, ok := Next(Grade(room.Grade))
		if !ok {
			// ห้องที่อยู่สถานะปลายทางแล้ว ไม่มีชั้นให้เลื่อนต่อ → ไม่สร้างกลุ่ม
			continue
		}
		k := groupKey{Grade(room.Grade), room.RoomType}

		grp, exists := ix.get(k)
		if !exists {
			grp = &PlanGroup{
				SourceGrade:      Grade(room.Grade),
				TargetGrade:      target,
				RoomType:         room.RoomType,
				TargetTeacherIDs: []uint{},
				Students:         []PlanStudent{},
			}
			if target == Graduated {
				// จบการศึกษา: ไม่มีห้องปลายทางให้ resolve และไม่ต้องมีครู
			} else if tr, found := targetIdx[groupKey{target, room.RoomType}]; found {
				id := tr.ID
				grp.TargetRoomID = &id
				if tr.TeacherID != nil {
					grp.TargetTeacherIDs = append(grp.TargetTeacherIDs, *tr.TeacherID)
				}
				grp.TargetTeacherIDs = append(grp.TargetTeacherIDs, targetSecondaries[tr.ID]...)
			} else {
				grp.IsNewRoom = true
				grp.TargetTeacherIDs = inferContinuingTeachers(sourceRooms, secondariesByRoom, target, room.RoomType)
			}
			ix.add(k, grp)
			seenTeacher[k] = map[uint]bool{}
			seenStudent[k] = map[uint]bool{}
		}

		// รวมชื่อครูของทุกห้องต้นทางที่แชร์คีย์ (หลักก่อน รอง ตามลำดับที่พบ)
		appendName := func(id uint) {
			if id == 0 || seenTeacher[k][id] {
				return
			}
			seenTeacher[k][id] = true
			if t, found := teacherByID[id]; found {
				namesByKey[k] = append(namesByKey[k], t.FirstName+" "+t.LastName)
			}
		}
		if room.TeacherID != nil {
			appendName(*room.TeacherID)
		}
		for _, id := range secondariesByRoom[room.ID] {
			appendName(id)
		}

		// รวมนักเรียน ตัดซ้ำด้วย id
		for _, sid := range studentsByRoom[room.ID] {
			if seenStudent[k][sid] {
				continue
			}
			seenStudent[k][sid] = true
			s, found := studentByID[sid]
			if !found {
				continue
			}
			grp.Students = append(grp.Students, PlanStudent{
				ID:        s.ID,
				Code:      s.StudentCode,
				FirstName: s.FirstName,
				LastName:  s.LastName,
				Selected:  true,
			})
		}
	}

	groups := ix.list()
	for i := range groups {
		k := groupKey{groups[i].SourceGrade, groups[i].RoomType}
		groups[i].SourceTeacher = strings.Join(namesByKey[k], ", ")
	}
	return groups, nil
}

// inferContinuingTeachers หาครูตั้งต้นของห้องใหม่ จากห้อง "ปีต้นทาง" ที่สอนอยู่
// ชั้นเดียวกับชั้นปลายทางและประเภทห้องเดียวกัน (ครูที่สอนชั้นที่กลุ่มนี้กำลังจะขึ้นไป)
// เก็บครูหลักก่อนครูรองของแต่ละห้อง ตัดซ้ำด้วย id
func inferContinuingTeachers(sourceRooms []models.Classroom, secondariesByRoom map[uint][]uint, targetGrade Grade, roomType string) []uint {
	out := []uint{}
	seen := map[uint]bool{}
	add := func(id uint) {
		if id > 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, r := range sourceRooms {
		if Grade(r.Grade) != targetGrade || r.RoomType != roomType {
			continue
		}
		if r.TeacherID != nil {
			add(*r.TeacherID)
		}
		for _, id := range secondariesByRoom[r.ID] {
			add(id)
		}
	}
	return out
}
