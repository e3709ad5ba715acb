package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	return db
}

// จัดข้อมูลปีต้นทาง/ปลายทาง 1 ห้อง Level_1 มีครู 1 คน นักเรียน 2 คน
func seedPromoteFixture(t *testing.T, db *gorm.DB) (src, dst models.AcademicYear, teacher models.Teacher) {
	t.Helper()
	src = models.AcademicYear{Year: "2025"}
	dst = models.AcademicYear{Year: "2026"}
	if err := db.Create(&src).Error; err != nil {
		t.Fatalf("seed year: %v", err)
	}
	if err := db.Create(&dst).Error; err != nil {
		t.Fatalf("seed year: %v", err)
	}
	teacher = models.Teacher{TeacherCode: "T001", FirstName: "Somchai", LastName: "Jaidee", Email: "t001@school.test"}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	room := models.Classroom{Grade: "Level_1", RoomType: "Standard", AcademicYearID: src.ID, TeacherID: &teacher.ID}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed classroom: %v", err)
	}
	for i, name := range []string{"Anan", "Busaba"} {
		s := models.Student{StudentCode: fmt.Sprintf("S%03d", i+1), FirstName: name, LastName: "Nakrian"}
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed student: %v", err)
		}
		if err := db.Create(&models.ClassroomStudent{ClassroomID: room.ID, StudentID: s.ID}).Error; err != nil {
			t.Fatalf("seed enrollment: %v", err)
		}
	}
	return src, dst, teacher
}

func TestPromotePreview(t *testing.T) {
	db := setupTestDB(t)
	src, dst, _ := seedPromoteFixture(t, db)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/promote?fromYearId=%d&toYearId=%d", src.ID, dst.ID), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewPromoteHandler()
	if assert.NoError(t, h.Preview(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		var groups []map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
		if assert.Len(t, groups, 1) {
			assert.Equal(t, "Level_1", groups[0]["sourceGrade"])
			assert.Equal(t, "Level_2", groups[0]["targetGrade"])
			assert.Equal(t, "Standard", groups[0]["roomType"])
			assert.Equal(t, "Somchai Jaidee", groups[0]["sourceTeacher"])
			assert.Len(t, groups[0]["students"], 2)
		}
	}
}

func TestPromotePreviewMissingParams(t *testing.T) {
	setupTestDB(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/promote?fromYearId=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := NewPromoteHandler().Preview(c)
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, map[string]any{"error": "INVALID_YEAR_ID"}, he.Message)
	}
}

func TestPromoteCommit(t *testing.T) {
	db := setupTestDB(t)
	src, dst, teacher := seedPromoteFixture(t, db)

	e := echo.New()

	// พรีวิวก่อน แล้วส่งแผนกลับพร้อมเลือกครูให้ห้องใหม่
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/promote?fromYearId=%d&toYearId=%d", src.ID, dst.ID), nil)
	rec := httptest.NewRecorder()
	if err := NewPromoteHandler().Preview(e.NewContext(req, rec)); err != nil {
		t.Fatalf("preview: %v", err)
	}
	var plan []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	plan[0]["targetTeacherIds"] = []uint{teacher.ID}

	body, _ := json.Marshal(map[string]any{"toYearId": dst.ID, "plan": plan})
	req = httptest.NewRequest(http.MethodPost, "/promote", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, NewPromoteHandler().Commit(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		var out map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.EqualValues(t, 1, out["created_rooms"])
		assert.EqualValues(t, 2, out["moved_students"])
	}

	var n int64
	assert.NoError(t, db.Model(&models.Classroom{}).
		Where("academic_year_id = ?", dst.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestPromoteCommitValidationError(t *testing.T) {
	db := setupTestDB(t)
	src, dst, _ := seedPromoteFixture(t, db)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/promote?fromYearId=%d&toYearId=%d", src.ID, dst.ID), nil)
	rec := httptest.NewRecorder()
	if err := NewPromoteHandler().Preview(e.NewContext(req, rec)); err != nil {
		t.Fatalf("preview: %v", err)
	}
	var plan []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	plan[0]["targetTeacherIds"] = []uint{} // ห้องใหม่แต่ไม่มีครู

	body, _ := json.Marshal(map[string]any{"toYearId": dst.ID, "plan": plan})
	req = httptest.NewRequest(http.MethodPost, "/promote", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()

	err := NewPromoteHandler().Commit(e.NewContext(req, rec))
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusBadRequest, he.Code)
		msg, ok := he.Message.(map[string]any)
		if assert.True(t, ok) {
			assert.Equal(t, "VALIDATION_ERROR", msg["error"])
			assert.NotEmpty(t, msg["fields"])
		}
	}

	var n int64
	assert.NoError(t, db.Model(&models.Classroom{}).
		Where("academic_year_id = ?", dst.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPromoteCommitInvalidPayload(t *testing.T) {
	setupTestDB(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/promote", strings.NewReader(`{"plan": []}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := NewPromoteHandler().Commit(e.NewContext(req, rec))
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, map[string]any{"error": "MISSING_FIELDS"}, he.Message)
	}
}
