package promotion

import (
	"errors"
	"fmt"
)

// ErrInvalidInput พารามิเตอร์ปี/แผนไม่ครบหรือรูปแบบผิด
var ErrInvalidInput = errors.New("invalid input")

// ValidationError แผนที่ส่งมาไม่ผ่านการตรวจ (ตอบ 400 และไม่เขียนข้อมูลใด ๆ)
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan validation failed: %v", e.Fields)
}

// PlanStudent นักเรียนหนึ่งคนในกลุ่มแผนเลื่อนชั้น
// FE ติ๊กเลือก/ไม่เลือกผ่าน selected ก่อนส่งกลับมา commit
type PlanStudent struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Selected  bool   `json:"selected"`
}

// PlanGroup กลุ่มเลื่อนชั้นหนึ่งกลุ่มต่อคู่ (ชั้นต้นทาง, ประเภทห้อง)
// ห้องต้นทางหลายห้องที่ชั้น/ประเภทเดียวกันถูกรวมเป็นกลุ่มเดียว
type PlanGroup struct {
	SourceGrade      Grade         `json:"sourceGrade"`
	TargetGrade      Grade         `json:"targetGrade"`
	RoomType         string        `json:"roomType"`
	SourceTeacher    string        `json:"sourceTeacher"` // ชื่อครูต้นทางทั้งหมด คั่นด้วย ", "
	TargetRoomID     *uint         `json:"targetRoomId"`
	IsNewRoom        bool          `json:"isNewRoom"`
	TargetTeacherIDs []uint        `json:"targetTeacherIds"` // index 0 = ครูหลัก
	Students         []PlanStudent `json:"students"`
}

// TeacherAssignment รูป typed ของ targetTeacherIds
// แยกครูหลัก/ครูรองชัดเจน ไม่พึ่งข้อตกลง "index 0 คือครูหลัก" กระจายทั่วโค้ด
type TeacherAssignment struct {
	Primary     uint
	Secondaries []uint
}

// teacherAssignment แปลงรายการ id เป็นรูป typed; ok=false เมื่อรายการว่าง
func (g *PlanGroup) teacherAssignment() (TeacherAssignment, bool) {
	if len(g.TargetTeacherIDs) == 0 {
		return TeacherAssignment{}, false
	}
	ta := TeacherAssignment{Primary: g.TargetTeacherIDs[0]}
	if len(g.TargetTeacherIDs) > 1 {
		ta.Secondaries = append(ta.Secondaries, g.TargetTeacherIDs[1:]...)
	}
	return ta, true
}

// selectedStudents คืนเฉพาะนักเรียนที่ถูกติ๊กเลือกไว้
func (g *PlanGroup) selectedStudents() []PlanStudent {
	out := make([]PlanStudent, 0, len(g.Students))
	for _, s := range g.Students {
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}

// groupKey คีย์รวมกลุ่ม (ชั้นต้นทาง, ประเภทห้อง)
type groupKey struct {
	Grade    Grade
	RoomType string
}

// groupIndex map แบบรักษาลำดับ insert เพื่อให้ผลลัพธ์เรียงคงที่
type groupIndex struct {
	order  []groupKey
	groups map[groupKey]*PlanGroup
}

func newGroupIndex() *groupIndex {
	return &groupIndex{groups: map[groupKey]*PlanGroup{}}
}

func (ix *groupIndex) get(k groupKey) (*PlanGroup, bool) {
	g, ok := ix.groups[k]
	return g, ok
}

func (ix *groupIndex) add(k groupKey, g *PlanGroup) {
	ix.order = append(ix.order, k)
	ix.groups[k] = g
}

func (ix *groupIndex) list() []PlanGroup {
	out := make([]PlanGroup, 0, len(ix.order))
	for _, k := range ix.order {
		out = append(out, *ix.groups[k])
	}
	return out
}
