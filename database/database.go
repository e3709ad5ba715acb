package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nruangsri/BEPromote/config"
	"github.com/nruangsri/BEPromote/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Migrate สร้าง/ปรับตารางทั้งหมดของระบบ (ใช้ร่วมกับ test DB ได้)
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.School{},
		&models.AcademicYear{},
		&models.Student{},
		&models.Teacher{},
		&models.Classroom{},
		&models.ClassroomTeacher{},
		&models.ClassroomStudent{},
		&models.User{},
	)
}
