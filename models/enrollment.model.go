package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a student's relationship to a course: payment state,
// access flag and progress. At most one enrollment exists per
// (user, course) pair, enforced by the compound unique index.
type Enrollment struct {
	gorm.Model
	UserID         uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID       uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	PaymentStatus  string     `json:"payment_status" gorm:"default:'PENDING'"`
	PaymentID      *uint      `json:"payment_id"` // payment that unlocked this enrollment, if any
	AccessGranted  bool       `json:"access_granted" gorm:"default:false"`
	ExpiryDate     *time.Time `json:"expiry_date"` // nil = lifetime access
	Progress       float64    `json:"progress" gorm:"default:0"` // completion percentage (0-100)
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	IsDeleted      bool       `json:"-" gorm:"default:false"`
}

// HasAccess decides whether course content is visible through this
// enrollment at the given instant. Role-based bypasses (admin, instructor
// of record) are handled by the caller, not here.
func (e *Enrollment) HasAccess(now time.Time) bool {
	if e.PaymentStatus != PaymentCompleted {
		return false
	}
	if !e.AccessGranted {
		return false
	}
	if e.ExpiryDate != nil && e.ExpiryDate.Before(now) {
		return false
	}
	return true
}

// MaterialCompletion records that a user finished one piece of content
type MaterialCompletion struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"index;not null"`
	CourseID   uint   `json:"course_id" gorm:"index;not null"`
	MaterialID uint   `json:"material_id" gorm:"index;not null"`
	Status     string `json:"status" gorm:"default:'COMPLETED'"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}
