package payments

import (
	"testing"

	"lms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDb(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Payment{},
		&models.Enrollment{},
	))

	return db
}

func seedCoursePayment(t *testing.T, db *gorm.DB) (*models.Course, *models.Payment) {
	t.Helper()

	course := models.Course{Title: "Intro to Trading", Price: 20, InstructorID: 99, Status: models.CoursePublished}
	require.NoError(t, db.Create(&course).Error)

	payment := models.Payment{
		UserID:    1,
		CourseID:  &course.ID,
		Amount:    20,
		Currency:  "USD",
		Method:    "visa_card",
		Reference: "visa_card-test-ref",
		Status:    models.PaymentPending,
	}
	require.NoError(t, db.Create(&payment).Error)

	return &course, &payment
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.PaymentPending, models.PaymentCompleted, true},
		{models.PaymentPending, models.PaymentFailed, true},
		{models.PaymentPending, models.PaymentUnderReview, true},
		{models.PaymentPending, models.PaymentRefunded, false},
		{models.PaymentUnderReview, models.PaymentCompleted, true},
		{models.PaymentUnderReview, models.PaymentFailed, true},
		{models.PaymentUnderReview, models.PaymentPending, false},
		{models.PaymentCompleted, models.PaymentRefunded, true},
		{models.PaymentCompleted, models.PaymentFailed, false},
		{models.PaymentFailed, models.PaymentCompleted, false},
		{models.PaymentFailed, models.PaymentPending, false},
		{models.PaymentRefunded, models.PaymentCompleted, false},
		{models.PaymentRefunded, models.PaymentPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusFromWebhook(t *testing.T) {
	got, err := StatusFromWebhook("success")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got)

	got, err = StatusFromWebhook("failed")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, got)

	got, err = StatusFromWebhook("pending_review")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnderReview, got)

	_, err = StatusFromWebhook("charged_back")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestApplyStatusCompletionGrantsAccess(t *testing.T) {
	db := openTestDb(t)
	course, payment := seedCoursePayment(t, db)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentCompleted, []byte(`{"status":"success"}`)))

	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.NotNil(t, payment.PaidAt)
	assert.NotEmpty(t, payment.RawWebhook)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", payment.UserID, course.ID).First(&enrollment).Error)
	assert.Equal(t, models.PaymentCompleted, enrollment.PaymentStatus)
	assert.True(t, enrollment.AccessGranted)
	require.NotNil(t, enrollment.PaymentID)
	assert.Equal(t, payment.ID, *enrollment.PaymentID)

	var fresh models.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, int64(1), fresh.EnrollmentCount)
}

func TestApplyStatusCompletionUpdatesPendingEnrollment(t *testing.T) {
	db := openTestDb(t)
	course, payment := seedCoursePayment(t, db)

	// Student enrolled first, payment outstanding
	pending := models.Enrollment{
		UserID:        payment.UserID,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentPending,
		AccessGranted: false,
	}
	require.NoError(t, db.Create(&pending).Error)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentCompleted, nil))

	var enrollments []models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", payment.UserID, course.ID).Find(&enrollments).Error)
	require.Len(t, enrollments, 1, "completion must not create a second enrollment")
	assert.True(t, enrollments[0].AccessGranted)
	assert.Equal(t, models.PaymentCompleted, enrollments[0].PaymentStatus)
}

func TestApplyStatusReplayIsIdempotent(t *testing.T) {
	db := openTestDb(t)
	course, payment := seedCoursePayment(t, db)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentCompleted, nil))

	err := ApplyStatus(db, payment, models.PaymentCompleted, nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// Counter must move exactly once
	var fresh models.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, int64(1), fresh.EnrollmentCount)
}

func TestApplyStatusRacingLoadersIncrementOnce(t *testing.T) {
	db := openTestDb(t)
	course, payment := seedCoursePayment(t, db)

	// Two requests load the same PENDING payment independently
	var second models.Payment
	require.NoError(t, db.First(&second, payment.ID).Error)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentCompleted, nil))

	err := ApplyStatus(db, &second, models.PaymentCompleted, nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, models.PaymentCompleted, second.Status)

	var fresh models.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, int64(1), fresh.EnrollmentCount)
}

func TestApplyStatusStaleLoaderLosesRace(t *testing.T) {
	db := openTestDb(t)
	_, payment := seedCoursePayment(t, db)

	// A webhook marks the payment failed while an admin approve still
	// holds the PENDING copy
	var stale models.Payment
	require.NoError(t, db.First(&stale, payment.ID).Error)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentFailed, nil))

	err := ApplyStatus(db, &stale, models.PaymentCompleted, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var fresh models.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentFailed, fresh.Status)
}

func TestApplyStatusRefundRevokesAccessKeepsCounter(t *testing.T) {
	db := openTestDb(t)
	course, payment := seedCoursePayment(t, db)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentCompleted, nil))
	require.NoError(t, ApplyStatus(db, payment, models.PaymentRefunded, nil))

	assert.Equal(t, models.PaymentRefunded, payment.Status)
	assert.NotNil(t, payment.RefundedAt)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", payment.UserID, course.ID).First(&enrollment).Error)
	assert.False(t, enrollment.AccessGranted)
	assert.Equal(t, models.PaymentRefunded, enrollment.PaymentStatus)

	// Counter reflects historical enrollments
	var fresh models.Course
	require.NoError(t, db.First(&fresh, course.ID).Error)
	assert.Equal(t, int64(1), fresh.EnrollmentCount)
}

func TestApplyStatusTerminalStatesAreFinal(t *testing.T) {
	db := openTestDb(t)
	_, payment := seedCoursePayment(t, db)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentFailed, nil))

	err := ApplyStatus(db, payment, models.PaymentCompleted, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = ApplyStatus(db, payment, models.PaymentFailed, nil)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	var fresh models.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentFailed, fresh.Status)
}

func TestApplyStatusUnderReviewPath(t *testing.T) {
	db := openTestDb(t)
	course, payment := seedCoursePayment(t, db)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentUnderReview, nil))

	// No access while under review
	var count int64
	db.Model(&models.Enrollment{}).Where("course_id = ? AND access_granted = ?", course.ID, true).Count(&count)
	assert.Equal(t, int64(0), count)

	require.NoError(t, ApplyStatus(db, payment, models.PaymentCompleted, nil))

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", payment.UserID, course.ID).First(&enrollment).Error)
	assert.True(t, enrollment.AccessGranted)
}

func TestApplyStatusCourseLessPayment(t *testing.T) {
	db := openTestDb(t)

	payment := models.Payment{
		UserID:    5,
		Amount:    50,
		Currency:  "USD",
		Method:    "mtn_momo",
		Reference: "mtn_momo-subscription-ref",
		Status:    models.PaymentPending,
	}
	require.NoError(t, db.Create(&payment).Error)

	require.NoError(t, ApplyStatus(db, &payment, models.PaymentCompleted, nil))

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Equal(t, int64(0), count, "subscription payments carry no enrollment side effects")
}
