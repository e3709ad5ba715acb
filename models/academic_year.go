package models

import "time"

// AcademicYear ปีการศึกษา (ค.ศ. 4 หลัก เช่น "2026")
type AcademicYear struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Year      string    `gorm:"size:4;not null;uniqueIndex" json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
