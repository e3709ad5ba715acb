package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/models"
	"github.com/nruangsri/BEPromote/promotion"
)

type ClassroomHandler struct{}

func NewClassroomHandler() *ClassroomHandler { return &ClassroomHandler{} }

type classroomPayload struct {
	Grade          string `json:"grade" validate:"required,max=20"`
	RoomType       string `json:"room_type" validate:"required,max=50"`
	AcademicYearID uint   `json:"academic_year_id" validate:"required,gt=0"`
	TeacherID      *uint  `json:"teacher_id" validate:"omitempty,gt=0"`
}

func (p *classroomPayload) norm() {
	p.Grade = strings.TrimSpace(p.Grade)
	p.RoomType = strings.Join(strings.Fields(p.RoomType), " ")
}

// ตรวจเพิ่มจาก validator: grade ต้องอยู่ในตารางระดับชั้น และห้ามเป็นสถานะจบการศึกษา
func validateClassroom(p *classroomPayload) map[string]string {
	errs := map[string]string{}
	if err := validate.Struct(p); err != nil {
		for _, fe := range fieldErrors(err) {
			errs[fe.field] = fe.msg
		}
	}
	g := promotion.Grade(p.Grade)
	if p.Grade != "" && (!promotion.Valid(g) || g == promotion.Graduated) {
		errs["grade"] = "ระดับชั้นไม่ถูกต้อง"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ========== List ==========
// GET /classrooms?year_id=&grade=&q=&page=&size=
func (h *ClassroomHandler) List(c echo.Context) error {
	page, size := 1, 20
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("size")); err == nil {
		if v < 1 {
			size = 1
		} else if v > 100 {
			size = 100
		} else {
			size = v
		}
	}

	tx := database.DB.Model(&models.Classroom{})
	if s := strings.TrimSpace(c.QueryParam("year_id")); s != "" {
		tx = tx.Where("academic_year_id = ?", atoiOr(s, 0))
	}
	if s := strings.TrimSpace(c.QueryParam("grade")); s != "" {
		tx = tx.Where("grade = ?", s)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		tx = tx.Where("room_type ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	var items []models.Classroom
	if err := tx.Order("id").Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items, "total": total, "page": page, "size": size})
}

// ========== Create ==========
func (h *ClassroomHandler) Create(c echo.Context) error {
	var p classroomPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.norm()
	if errs := validateClassroom(&p); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	var year models.AcademicYear
	if err := database.DB.First(&year, "id = ?", p.AcademicYearID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
				"error": "VALIDATION_ERROR", "fields": map[string]string{"academic_year_id": "ไม่พบปีการศึกษา"},
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	rec := models.Classroom{
		Grade:          p.Grade,
		RoomType:       p.RoomType,
		AcademicYearID: p.AcademicYearID,
		TeacherID:      p.TeacherID,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rec)
}

// ========== Update ==========
func (h *ClassroomHandler) Update(c echo.Context) error {
	id := atoiOr(strings.TrimSpace(c.Param("id")), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	var rec models.Classroom
	if err := database.DB.First(&rec, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	var p classroomPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.norm()
	if errs := validateClassroom(&p); errs != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	rec.Grade = p.Grade
	rec.RoomType = p.RoomType
	rec.AcademicYearID = p.AcademicYearID
	rec.TeacherID = p.TeacherID
	if err := database.DB.Save(&rec).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, rec)
}

// ========== Delete ==========
func (h *ClassroomHandler) Delete(c echo.Context) error {
	id := atoiOr(strings.TrimSpace(c.Param("id")), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}
	tx := database.DB.Delete(&models.Classroom{}, "id = ?", id)
	if tx.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	if tx.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	return c.NoContent(http.StatusNoContent)
}

/* -------------------- Teacher assignment -------------------- */

type classroomTeachersPayload struct {
	TeacherIDs []uint `json:"teacher_ids" validate:"required,min=1,dive,gt=0"` // ตัวแรก = ครูหลัก
}

// PUT /classrooms/:id/teachers — ตั้งครูหลัก + แทนที่ชุดครูรอง
func (h *ClassroomHandler) AssignTeachers(c echo.Context) error {
	id := atoiOr(strings.TrimSpace(c.Param("id")), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	var p classroomTeachersPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(&p); err != nil {
		errs := map[string]string{}
		for _, fe := range fieldErrors(err) {
			errs[fe.field] = fe.msg
		}
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": errs})
	}

	var rec models.Classroom
	if err := database.DB.First(&rec, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	primary := p.TeacherIDs[0]
	secondaries := p.TeacherIDs[1:]

	tx := database.DB.Begin()
	if err := tx.Model(&rec).Update("teacher_id", primary).Error; err != nil {
		tx.Rollback()
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	del := tx.Where("classroom_id = ?", rec.ID)
	if len(secondaries) > 0 {
		del = del.Where("teacher_id NOT IN ?", secondaries)
	}
	if err := del.Delete(&models.ClassroomTeacher{}).Error; err != nil {
		tx.Rollback()
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	for _, tid := range secondaries {
		link := models.ClassroomTeacher{ClassroomID: rec.ID, TeacherID: tid}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "classroom_id"}, {Name: "teacher_id"}},
			DoNothing: true,
		}).Create(&link).Error; err != nil {
			tx.Rollback()
			return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	if err := tx.Commit().Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"classroom_id": rec.ID,
		"teacher_id":   primary,
		"secondaries":  secondaries,
	})
}

/* -------------------- Enrollment reads -------------------- */

// GET /classrooms/:id/students — รายชื่อนักเรียนที่ลงทะเบียนในห้องนี้
func (h *ClassroomHandler) ListStudents(c echo.Context) error {
	id := atoiOr(strings.TrimSpace(c.Param("id")), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	var rec models.Classroom
	if err := database.DB.First(&rec, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	var items []models.Student
	err := database.DB.
		Joins("JOIN classroom_students cs ON cs.student_id = students.id").
		Where("cs.classroom_id = ?", rec.ID).
		Order("students.id").
		Find(&items).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}
