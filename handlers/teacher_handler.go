package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/models"
)

/*** Validation rules ***/
var (
	tchReCode  = regexp.MustCompile(`^[A-Za-z0-9]{1,20}$`)
	tchReName  = regexp.MustCompile(`^[A-Za-zก-๙\- ]{1,50}$`)
	tchReEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	tchRePhone = regexp.MustCompile(`^[0-9\- ]{1,15}$`)
)

type TeacherHandler struct{}

func NewTeacherHandler() *TeacherHandler { return &TeacherHandler{} }

type teacherPayload struct {
	TeacherCode string `json:"teacher_code"`
	Prefix      string `json:"prefix"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Position    string `json:"position"`
}

func (p *teacherPayload) norm() {
	trim := func(s string) string { return strings.TrimSpace(s) }
	p.TeacherCode = trim(p.TeacherCode)
	p.Prefix = trim(p.Prefix)
	p.FirstName = strings.Join(strings.Fields(p.FirstName), " ")
	p.LastName = strings.Join(strings.Fields(p.LastName), " ")
	p.Phone = trim(p.Phone)
	p.Email = strings.ToLower(trim(p.Email))
	p.Position = strings.Join(strings.Fields(p.Position), " ")
}

// อ่านจำนวนหลักรหัสครูจาก school (0 = ไม่บังคับ)
func getTeacherCodeLimit() int {
	type tmp struct {
		TeacherCodeDigits int
	}
	var t tmp
	if err := database.DB.Table("schools").Select("teacher_code_digits").First(&t).Error; err != nil {
		return 0
	}
	if t.TeacherCodeDigits < 0 {
		return 0
	}
	return t.TeacherCodeDigits
}

func validateTeacher(p *teacherPayload) map[string]string {
	errs := map[string]string{}
	if p.TeacherCode == "" || !tchReCode.MatchString(p.TeacherCode) {
		errs["teacher_code"] = "รหัสครูไม่ถูกต้อง"
	} else if lim := getTeacherCodeLimit(); lim > 0 && len(p.TeacherCode) > lim {
		errs["teacher_code"] = fmt.Sprintf("รหัสครูต้องไม่เกิน %d ตัว", lim)
	}
	if p.Prefix == "" {
		errs["prefix"] = "กรุณาระบุคำนำหน้า"
	}
	if p.FirstName == "" || !tchReName.MatchString(p.FirstName) {
		errs["first_name"] = "ชื่อต้องเป็นตัวอักษร (ไทย/อังกฤษ)"
	}
	if p.LastName == "" || !tchReName.MatchString(p.LastName) {
		errs["last_name"] = "นามสกุลต้องเป็นตัวอักษร (ไทย/อังกฤษ)"
	}
	if !tchRePhone.MatchString(p.Phone) {
		errs["phone"] = "รูปแบบเบอร์โทรไม่ถูกต้อง"
	}
	if p.Email == "" || !tchReEmail.MatchString(p.Email) {
		errs["email"] = "อีเมลไม่ถูกต้อง"
	}
	if strings.TrimSpace(p.Position) == "" {
		errs["position"] = "กรุณาระบุตำแหน่ง"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

/*** Handlers ***/

func (h *TeacherHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	size := 20
	if v, err := strconv.Atoi(c.QueryParam("size")); err == nil {
		if v < 1 {
			size = 1
		} else if v > 100 {
			size = 100
		} else {
			size = v
		}
	}

	tx := database.DB.Model(&models.Teacher{})
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("teacher_code ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", like, like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "DB_COUNT_FAILED"})
	}
	var items []models.Teacher
	if err := tx.Order("id DESC").Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  items,
		"page":  page,
		"size":  size,
		"total": total,
	})
}

func (h *TeacherHandler) Create(c echo.Context) error {
	var p teacherPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.norm()
	if errs := validateTeacher(&p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	rec := models.Teacher{
		TeacherCode: p.TeacherCode, Prefix: p.Prefix,
		FirstName: p.FirstName, LastName: p.LastName,
		Phone: p.Phone, Email: p.Email, Position: p.Position,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *TeacherHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var existing models.Teacher
	if err := database.DB.First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	var p teacherPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.norm()
	if errs := validateTeacher(&p); errs != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	existing.TeacherCode = p.TeacherCode
	existing.Prefix = p.Prefix
	existing.FirstName = p.FirstName
	existing.LastName = p.LastName
	existing.Phone = p.Phone
	existing.Email = p.Email
	existing.Position = p.Position

	if err := database.DB.Save(&existing).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, existing)
}

func (h *TeacherHandler) Delete(c echo.Context) error {
	id := atoiOr(strings.TrimSpace(c.Param("id")), 0)
	if id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	// กันลบครูที่ยังเป็นครูประจำชั้น (หลักหรือรอง) อยู่
	var n int64
	if err := database.DB.Model(&models.Classroom{}).Where("teacher_id = ?", id).Count(&n).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if n == 0 {
		if err := database.DB.Model(&models.ClassroomTeacher{}).Where("teacher_id = ?", id).Count(&n).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
		}
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, map[string]any{"error": "TEACHER_IN_USE"})
	}

	tx := database.DB.Delete(&models.Teacher{}, "id = ?", id)
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	if tx.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	return c.NoContent(http.StatusNoContent)
}
