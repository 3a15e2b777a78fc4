package payattendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
)

// AttendanceEntry is one per (user, date) presence record used to prorate
// the travel allowance.
type AttendanceEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_user_date,unique"`
	EntryDate time.Time `gorm:"type:date;not null;index:idx_attendance_user_date,unique"`
	Status    string    `gorm:"type:varchar(10);not null;default:'PRESENT'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AttendanceEntry) TableName() string {
	return "payroll_attendance_entries"
}
