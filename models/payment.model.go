package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment status lifecycle: PENDING -> {COMPLETED, FAILED, UNDER_REVIEW},
// UNDER_REVIEW -> {COMPLETED, FAILED}, COMPLETED -> REFUNDED.
// FAILED and REFUNDED are terminal.
const (
	PaymentPending     = "PENDING"
	PaymentUnderReview = "UNDER_REVIEW"
	PaymentCompleted   = "COMPLETED"
	PaymentFailed      = "FAILED"
	PaymentRefunded    = "REFUNDED"
)

// Payment is an append-only ledger entry for one payment attempt.
// Records are never deleted; corrections go through the REFUNDED state.
type Payment struct {
	gorm.Model
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	CourseID   *uint          `json:"course_id" gorm:"index"` // nil = course-independent subscription payment
	Amount     float64        `json:"amount" gorm:"not null"`
	Currency   string         `json:"currency" gorm:"default:'USD'"`
	Method     string         `json:"method" gorm:"not null"` // canonical method, see services/payments
	Provider   string         `json:"provider"`
	Reference  string         `json:"reference" gorm:"unique;not null"`
	Status     string         `json:"status" gorm:"default:'PENDING';index"`
	PaidAt     *time.Time     `json:"paid_at"`
	RefundedAt *time.Time     `json:"refunded_at"`
	Metadata   datatypes.JSON `json:"metadata"`
	RawWebhook datatypes.JSON `json:"-"` // last webhook payload, retained for audit
}
