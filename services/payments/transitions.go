package payments

import (
	"time"

	"lms/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var allowedTransitions = map[string][]string{
	models.PaymentPending:     {models.PaymentCompleted, models.PaymentFailed, models.PaymentUnderReview},
	models.PaymentUnderReview: {models.PaymentCompleted, models.PaymentFailed},
	models.PaymentCompleted:   {models.PaymentRefunded},
	// FAILED and REFUNDED are terminal
}

// CanTransition reports whether a payment may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusFromWebhook maps an inbound gateway status to the internal lifecycle
func StatusFromWebhook(inbound string) (string, error) {
	switch inbound {
	case "success":
		return models.PaymentCompleted, nil
	case "failed":
		return models.PaymentFailed, nil
	case "pending_review":
		return models.PaymentUnderReview, nil
	}
	return "", ErrUnknownStatus
}

// ApplyStatus moves a payment to newStatus and runs the enrollment side
// effects in the same database transaction. Re-delivery of a status the
// payment already holds returns ErrAlreadyProcessed without touching
// anything; an illegal move returns ErrInvalidTransition.
//
// The status move is a conditional update keyed on the status the caller
// loaded, so the database arbitrates races: two callers holding the same
// PENDING copy cannot both commit the COMPLETED transition.
func ApplyStatus(db *gorm.DB, payment *models.Payment, newStatus string, rawPayload []byte) error {
	if payment.Status == newStatus {
		return ErrAlreadyProcessed
	}
	if !CanTransition(payment.Status, newStatus) {
		return ErrInvalidTransition
	}

	oldStatus := payment.Status
	now := time.Now()

	updates := map[string]interface{}{
		"status": newStatus,
		// Provider corrections from the caller ride along
		"amount":   payment.Amount,
		"currency": payment.Currency,
		"provider": payment.Provider,
	}
	switch newStatus {
	case models.PaymentCompleted:
		updates["paid_at"] = &now
	case models.PaymentRefunded:
		updates["refunded_at"] = &now
	}
	if rawPayload != nil {
		updates["raw_webhook"] = datatypes.JSON(rawPayload)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	res := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, oldStatus).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Someone else moved the payment first; re-read and report
		// against the current status
		tx.Rollback()
		var current models.Payment
		if err := db.First(&current, payment.ID).Error; err != nil {
			return err
		}
		*payment = current
		if payment.Status == newStatus {
			return ErrAlreadyProcessed
		}
		return ErrInvalidTransition
	}

	payment.Status = newStatus
	switch newStatus {
	case models.PaymentCompleted:
		payment.PaidAt = &now
	case models.PaymentRefunded:
		payment.RefundedAt = &now
	}
	if rawPayload != nil {
		payment.RawWebhook = datatypes.JSON(rawPayload)
	}

	// Course-independent payments carry no enrollment side effects
	if payment.CourseID != nil {
		switch newStatus {
		case models.PaymentCompleted:
			if err := grantAccess(tx, payment); err != nil {
				tx.Rollback()
				return err
			}
		case models.PaymentRefunded:
			if err := revokeAccess(tx, payment); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	return tx.Commit().Error
}

// grantAccess upserts the enrollment for the payment's (user, course) pair
// and bumps the course enrollment counter. The counter moves exactly once
// per payment because only one caller wins the transition into COMPLETED.
// The upsert keeps the transaction healthy on Postgres, where a plain
// INSERT hitting the unique index would abort the whole transaction.
func grantAccess(tx *gorm.DB, payment *models.Payment) error {
	paymentID := payment.ID

	enrollment := models.Enrollment{
		UserID:        payment.UserID,
		CourseID:      *payment.CourseID,
		PaymentStatus: models.PaymentCompleted,
		PaymentID:     &paymentID,
		AccessGranted: true,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payment_status": models.PaymentCompleted,
			"payment_id":     paymentID,
			"access_granted": true,
			"is_deleted":     false,
			"updated_at":     time.Now(),
		}),
	}).Create(&enrollment).Error; err != nil {
		return err
	}

	// Relative increment, never read-modify-write
	return tx.Model(&models.Course{}).
		Where("id = ?", *payment.CourseID).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
}

// revokeAccess pulls access on the matching enrollment after a refund.
// The enrollment counter reflects historical enrollments and stays put.
func revokeAccess(tx *gorm.DB, payment *models.Payment) error {
	var enrollment models.Enrollment
	err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", payment.UserID, *payment.CourseID, false).
		First(&enrollment).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	enrollment.PaymentStatus = models.PaymentRefunded
	enrollment.AccessGranted = false
	return tx.Save(&enrollment).Error
}
