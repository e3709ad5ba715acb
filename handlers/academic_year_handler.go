package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/models"
)

var yrReYear = regexp.MustCompile(`^[0-9]{4}$`) // ค.ศ. 4 หลัก

type AcademicYearHandler struct{}

func NewAcademicYearHandler() *AcademicYearHandler { return &AcademicYearHandler{} }

type academicYearPayload struct {
	Year string `json:"year" validate:"required,len=4,numeric"`
}

// GET /academic-years
func (h *AcademicYearHandler) List(c echo.Context) error {
	var items []models.AcademicYear
	if err := database.DB.Order("year").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

// POST /academic-years — สร้างปีการศึกษา (ปีซ้ำ → 409)
func (h *AcademicYearHandler) Create(c echo.Context) error {
	var p academicYearPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.Year = strings.TrimSpace(p.Year)
	if err := validate.Struct(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"year": "ปีการศึกษาต้องเป็นตัวเลข 4 หลัก"},
		})
	}

	var dup models.AcademicYear
	if err := database.DB.Where("year = ?", p.Year).First(&dup).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{"error": "YEAR_EXISTS", "id": dup.ID})
	}

	rec := models.AcademicYear{Year: p.Year}
	if err := database.DB.Create(&rec).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, rec)
}

// POST /academic-years/ensure — สร้าง "ปีถัดไป" ถ้ายังไม่มี (FE เรียกก่อนขอพรีวิวเลื่อนชั้น)
// body: { "from_year": "2026" } → คืนปี from_year+1 (สร้างใหม่หรือของเดิม)
func (h *AcademicYearHandler) EnsureNext(c echo.Context) error {
	var p struct {
		FromYear string `json:"from_year"`
	}
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_PAYLOAD"})
	}
	p.FromYear = strings.TrimSpace(p.FromYear)
	if !yrReYear.MatchString(p.FromYear) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"from_year": "ปีการศึกษาต้องเป็นตัวเลข 4 หลัก"},
		})
	}

	n, _ := strconv.Atoi(p.FromYear)
	next := strconv.Itoa(n + 1)

	var rec models.AcademicYear
	err := database.DB.Where("year = ?", next).First(&rec).Error
	if err == nil {
		return c.JSON(http.StatusOK, map[string]any{"id": rec.ID, "year": rec.Year, "created": false})
	}
	if err != gorm.ErrRecordNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	rec = models.AcademicYear{Year: next}
	if err := database.DB.Create(&rec).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": rec.ID, "year": rec.Year, "created": true})
}

// DELETE /academic-years/:id
func (h *AcademicYearHandler) Delete(c echo.Context) error {
	id := atoiOr(strings.TrimSpace(c.Param("id")), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	// กันลบปีที่ยังมีห้องเรียนอ้างอยู่
	var n int64
	if err := database.DB.Model(&models.Classroom{}).Where("academic_year_id = ?", id).Count(&n).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}
	if n > 0 {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{"error": "YEAR_IN_USE", "classrooms": n})
	}

	tx := database.DB.Delete(&models.AcademicYear{}, "id = ?", id)
	if tx.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_DELETE_FAILED"})
	}
	if tx.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
	}
	return c.NoContent(http.StatusNoContent)
}
