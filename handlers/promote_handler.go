package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/promotion"
)

type PromoteHandler struct{}

func NewPromoteHandler() *PromoteHandler { return &PromoteHandler{} }

/* -------------------- Payload structs -------------------- */

type promotePayload struct {
	ToYearID any                   `json:"toYearId"` // FE อาจส่งเป็น number หรือ string
	Plan     []promotion.PlanGroup `json:"plan"`
}

// รับ id เป็น number หรือ string ตัวเลขก็ได้
func parseYearID(v any) (uint, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return 0, false
		}
		return uint(t), true
	case int:
		if t <= 0 {
			return 0, false
		}
		return uint(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return uint(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

/* -------------------- Handlers -------------------- */

// GET /promote?fromYearId=<id>&toYearId=<id> — พรีวิวแผนเลื่อนชั้น (อ่านอย่างเดียว)
func (h *PromoteHandler) Preview(c echo.Context) error {
	fromID, okFrom := parseYearID(c.QueryParam("fromYearId"))
	toID, okTo := parseYearID(c.QueryParam("toYearId"))
	if !okFrom || !okTo {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_YEAR_ID"})
	}

	groups, err := promotion.BuildPlan(database.DB, fromID, toID)
	if err != nil {
		if errors.Is(err, promotion.ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_YEAR_ID"})
		}
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "PLAN_BUILD_FAILED"})
	}
	return c.JSON(http.StatusOK, groups)
}

// POST /promote — commit แผนที่ผู้ใช้แก้ไขแล้ว (ทั้งแผนใน transaction เดียว)
func (h *PromoteHandler) Commit(c echo.Context) error {
	var p promotePayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	toID, ok := parseYearID(p.ToYearID)
	if !ok || p.Plan == nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	res, err := promotion.ExecutePlan(database.DB, toID, p.Plan)
	if err != nil {
		var ve *promotion.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
				"error":  "VALIDATION_ERROR",
				"fields": ve.Fields,
			})
		}
		if errors.Is(err, promotion.ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "DB_TX_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":        fmt.Sprintf("สร้างห้องเรียนใหม่ %d ห้อง และย้ายนักเรียน %d คน", res.CreatedRooms, res.MovedStudents),
		"created_rooms":  res.CreatedRooms,
		"moved_students": res.MovedStudents,
	})
}
