package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/models"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// GET /dashboard/years/:id/summary
// สรุปภาพรวมของปีการศึกษา: จำนวนห้องและนักเรียนต่อระดับชั้น
// { year, grades: [{ grade, classrooms, students }], total_students }
func (h *DashboardHandler) YearSummary(c echo.Context) error {
	id := atoiOr(strings.TrimSpace(c.Param("id")), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"error": "INVALID_ID"})
	}

	var year models.AcademicYear
	if err := database.DB.First(&year, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, map[string]string{"error": "NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	type row struct {
		Grade      string `json:"grade"`
		Classrooms int64  `json:"classrooms"`
		Students   int64  `json:"students"`
	}
	var rows []row
	err := database.DB.Table("classrooms AS c").
		Select("c.grade, COUNT(DISTINCT c.id) AS classrooms, COUNT(cs.id) AS students").
		Joins("LEFT JOIN classroom_students cs ON cs.classroom_id = c.id").
		Where("c.academic_year_id = ?", year.ID).
		Group("c.grade").
		Order("c.grade").
		Scan(&rows).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{"error": "DB_QUERY_FAILED"})
	}

	var total int64
	for _, r := range rows {
		total += r.Students
	}

	return c.JSON(http.StatusOK, map[string]any{
		"year":           year.Year,
		"grades":         rows,
		"total_students": total,
	})
}
