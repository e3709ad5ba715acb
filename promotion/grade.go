package promotion

// Grade ระดับชั้น เรียงจากต่ำไปสูง ปิดท้ายด้วยสถานะจบการศึกษา
type Grade string

const (
	Level1    Grade = "Level_1"
	Level2    Grade = "Level_2"
	Level3    Grade = "Level_3"
	Level4    Grade = "Level_4"
	Level5    Grade = "Level_5"
	Level6    Grade = "Level_6"
	Graduated Grade = "Graduated"
)

// ตารางเลื่อนชั้นตายตัว Level_1 → ... → Level_6 → Graduated
var gradeOrder = []Grade{Level1, Level2, Level3, Level4, Level5, Level6, Graduated}

// Next คืนระดับชั้นถัดไปตามตาราง
// ok=false เมื่อไม่มีการเลื่อนต่อ (Graduated เป็นสถานะปลายทาง)
func Next(g Grade) (Grade, bool) {
	for i, cur := range gradeOrder {
		if cur == g {
			if i+1 >= len(gradeOrder) {
				return "", false
			}
			return gradeOrder[i+1], true
		}
	}
	return "", false
}

// Valid ตรวจว่า g อยู่ในตารางระดับชั้นหรือไม่
func Valid(g Grade) bool {
	for _, cur := range gradeOrder {
		if cur == g {
			return true
		}
	}
	return false
}
