package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/models"
)

type SchoolHandler struct{}

func NewSchoolHandler() *SchoolHandler { return &SchoolHandler{} }

type schoolPayload struct {
	SchoolCode        string `json:"school_code"`
	SchoolName        string `json:"school_name"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	EducationLevel    string `json:"education_level"`
	TeacherCodeDigits int    `json:"teacher_code_digits"`
	StudentCodeDigits int    `json:"student_code_digits"`
}

var (
	schReCode   = regexp.MustCompile(`^[ก-๙A-Za-z0-9]{1,20}$`)
	schReName   = regexp.MustCompile(`^[ก-๙0-9\s]{1,50}$`)
	schReAddr   = regexp.MustCompile(`^[ก-๙0-9\s.,/]{1,100}$`)
	schRePhone  = regexp.MustCompile(`^[0-9\- ]{1,10}$`)
	validLevels = map[string]bool{
		"อนุบาลศึกษา":    true,
		"ประถมศึกษา":     true,
		"มัธยมศึกษา":     true,
		"ทุกระดับการสอน": true,
	}
)

func validateSchool(p schoolPayload) map[string]string {
	errs := map[string]string{}
	if !schReCode.MatchString(strings.TrimSpace(p.SchoolCode)) {
		errs["school_code"] = "รูปแบบรหัสโรงเรียนไม่ถูกต้อง"
	}
	if !schReName.MatchString(strings.TrimSpace(p.SchoolName)) {
		errs["school_name"] = "รูปแบบชื่อโรงเรียนไม่ถูกต้อง"
	}
	if !schReAddr.MatchString(strings.TrimSpace(p.Address)) {
		errs["address"] = "รูปแบบที่อยู่ไม่ถูกต้อง"
	}
	if !schRePhone.MatchString(strings.TrimSpace(p.Phone)) {
		errs["phone"] = "รูปแบบเบอร์โทรไม่ถูกต้อง"
	}
	if !validLevels[strings.TrimSpace(p.EducationLevel)] {
		errs["education_level"] = "กรุณาเลือกระดับการสอนให้ถูกต้อง"
	}
	if p.TeacherCodeDigits < 0 || p.TeacherCodeDigits > 20 {
		errs["teacher_code_digits"] = "จำนวนหลักรหัสครูต้องอยู่ระหว่าง 0–20"
	}
	if p.StudentCodeDigits < 0 || p.StudentCodeDigits > 20 {
		errs["student_code_digits"] = "จำนวนหลักรหัสนักเรียนต้องอยู่ระหว่าง 0–20"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// GET /school — โรงเรียนมี record เดียว
func (h *SchoolHandler) Get(c echo.Context) error {
	var s models.School
	if err := database.DB.Order("id ASC").First(&s).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	return c.JSON(http.StatusOK, s)
}

// POST /school — สร้างครั้งแรก หรืออัปเดตแถวเดิม (ใช้ตอน initial setup)
func (h *SchoolHandler) CreateOrUpdate(c echo.Context) error {
	var p schoolPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if errs := validateSchool(p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	in := models.School{
		SchoolCode:        strings.TrimSpace(p.SchoolCode),
		SchoolName:        strings.TrimSpace(p.SchoolName),
		Address:           strings.TrimSpace(p.Address),
		Phone:             strings.TrimSpace(p.Phone),
		EducationLevel:    strings.TrimSpace(p.EducationLevel),
		TeacherCodeDigits: p.TeacherCodeDigits,
		StudentCodeDigits: p.StudentCodeDigits,
	}

	var s models.School
	if err := database.DB.Order("id ASC").First(&s).Error; err != nil {
		if err := database.DB.Create(&in).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, in)
	}
	if err := database.DB.Model(&s).Updates(in).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}

// DELETE /school
func (h *SchoolHandler) Delete(c echo.Context) error {
	var s models.School
	if err := database.DB.Order("id ASC").First(&s).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	if err := database.DB.Delete(&s).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
