package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// แปลง string -> int; ถ้าแปลงไม่ได้ให้คืนค่าเริ่มต้น
func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// validator ตัวเดียวใช้ร่วมทุก handler (struct tags ตาม payload)
var validate = validator.New()

type fieldError struct {
	field string
	msg   string
}

// fieldErrors แปลง error ของ validator เป็นรายการ field/ข้อความ สำหรับตอบ VALIDATION_ERROR
func fieldErrors(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{field: "payload", msg: "ข้อมูลไม่ถูกต้อง"}}
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out = append(out, fieldError{field: name, msg: "จำเป็นต้องระบุ"})
		case "max":
			out = append(out, fieldError{field: name, msg: "ยาวเกินกำหนด"})
		case "min":
			out = append(out, fieldError{field: name, msg: "ต้องมีอย่างน้อย " + fe.Param() + " รายการ"})
		default:
			out = append(out, fieldError{field: name, msg: "ข้อมูลไม่ถูกต้อง"})
		}
	}
	return out
}
