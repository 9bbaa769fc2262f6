package enrollmentController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	enrollmentValidator "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupEnrollmentTest(t *testing.T, user *models.User) *fiber.App {
	t.Helper()

	config.AppConfig = &config.Config{DefaultCurrency: "USD"}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	require.NoError(t, db.Create(user).Error)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("currentUser", *user)
		return c.Next()
	})
	app.Post("/enrollment", enrollmentValidator.EnrollCourse(), EnrollInCourse)
	app.Get("/enrollment/check-access/:courseId", enrollmentValidator.CheckAccessCourseID(), CheckCourseAccess)
	app.Put("/enrollment/:id/progress", enrollmentValidator.EnrollmentID(), enrollmentValidator.UpdateProgress(), UpdateProgress)
	app.Post("/enrollment/manual", enrollmentValidator.ManualEnroll(), ManualEnroll)
	app.Put("/enrollment/:id/revoke", enrollmentValidator.EnrollmentID(), RevokeAccess)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func seedPublishedCourse(t *testing.T) *models.Course {
	t.Helper()
	course := models.Course{Title: "Go Fundamentals", Price: 30, InstructorID: 50, Status: models.CoursePublished}
	require.NoError(t, database.Database.Db.Create(&course).Error)
	return &course
}

func TestEnrollInCourseCreatesPendingEnrollment(t *testing.T) {
	student := models.User{Name: "Student", Email: "s1@example.com", Role: models.RoleStudent, IsActive: true}
	app := setupEnrollmentTest(t, &student)
	course := seedPublishedCourse(t)

	status, out := doJSON(t, app, "POST", "/enrollment", fiber.Map{"courseId": course.ID})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.True(t, out["status"].(bool))

	var enrollment models.Enrollment
	require.NoError(t, database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, models.PaymentPending, enrollment.PaymentStatus)
	assert.False(t, enrollment.AccessGranted)

	// Enrolling does not bump the counter, only completed payment does
	var fresh models.Course
	require.NoError(t, database.Database.Db.First(&fresh, course.ID).Error)
	assert.Equal(t, int64(0), fresh.EnrollmentCount)
}

func TestEnrollInCourseDuplicateConflicts(t *testing.T) {
	student := models.User{Name: "Student", Email: "s2@example.com", Role: models.RoleStudent, IsActive: true}
	app := setupEnrollmentTest(t, &student)
	course := seedPublishedCourse(t)

	status, _ := doJSON(t, app, "POST", "/enrollment", fiber.Map{"courseId": course.ID})
	require.Equal(t, fiber.StatusCreated, status)

	status, out := doJSON(t, app, "POST", "/enrollment", fiber.Map{"courseId": course.ID})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Already enrolled in this course!", out["message"])

	var count int64
	database.Database.Db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollInCourseUnpublishedNotFound(t *testing.T) {
	student := models.User{Name: "Student", Email: "s3@example.com", Role: models.RoleStudent, IsActive: true}
	app := setupEnrollmentTest(t, &student)

	draft := models.Course{Title: "Draft Course", Price: 10, InstructorID: 50, Status: models.CourseDraft}
	require.NoError(t, database.Database.Db.Create(&draft).Error)

	status, _ := doJSON(t, app, "POST", "/enrollment", fiber.Map{"courseId": draft.ID})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "POST", "/enrollment", fiber.Map{"courseId": 9999})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCheckCourseAccess(t *testing.T) {
	student := models.User{Name: "Student", Email: "s4@example.com", Role: models.RoleStudent, IsActive: true}
	app := setupEnrollmentTest(t, &student)
	course := seedPublishedCourse(t)

	// No enrollment yet
	status, out := doJSON(t, app, "GET", fmt.Sprintf("/enrollment/check-access/%d", course.ID), nil)
	assert.Equal(t, fiber.StatusOK, status)
	data := out["data"].(map[string]any)
	assert.False(t, data["hasAccess"].(bool))
	assert.False(t, data["enrolled"].(bool))

	// Paid enrollment grants access
	enrollment := models.Enrollment{
		UserID:        student.ID,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentCompleted,
		AccessGranted: true,
	}
	require.NoError(t, database.Database.Db.Create(&enrollment).Error)

	status, out = doJSON(t, app, "GET", fmt.Sprintf("/enrollment/check-access/%d", course.ID), nil)
	assert.Equal(t, fiber.StatusOK, status)
	data = out["data"].(map[string]any)
	assert.True(t, data["hasAccess"].(bool))
	assert.True(t, data["enrolled"].(bool))
}

func TestCheckCourseAccessAdminBypass(t *testing.T) {
	admin := models.User{Name: "Admin", Email: "a1@example.com", Role: models.RoleAdmin, IsActive: true}
	app := setupEnrollmentTest(t, &admin)
	course := seedPublishedCourse(t)

	status, out := doJSON(t, app, "GET", fmt.Sprintf("/enrollment/check-access/%d", course.ID), nil)
	assert.Equal(t, fiber.StatusOK, status)
	data := out["data"].(map[string]any)
	assert.True(t, data["hasAccess"].(bool))
	assert.True(t, data["bypass"].(bool))
}

func TestUpdateProgressRequiresAccess(t *testing.T) {
	student := models.User{Name: "Student", Email: "s5@example.com", Role: models.RoleStudent, IsActive: true}
	app := setupEnrollmentTest(t, &student)
	course := seedPublishedCourse(t)

	enrollment := models.Enrollment{
		UserID:        student.ID,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentPending,
		AccessGranted: false,
	}
	require.NoError(t, database.Database.Db.Create(&enrollment).Error)

	pct := 10.0
	status, out := doJSON(t, app, "PUT", fmt.Sprintf("/enrollment/%d/progress", enrollment.ID),
		fiber.Map{"percentageComplete": pct})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Payment required to access course content!", out["message"])
}

func TestUpdateProgressClampsPercentage(t *testing.T) {
	student := models.User{Name: "Student", Email: "s6@example.com", Role: models.RoleStudent, IsActive: true}
	app := setupEnrollmentTest(t, &student)
	course := seedPublishedCourse(t)

	enrollment := models.Enrollment{
		UserID:        student.ID,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentCompleted,
		AccessGranted: true,
	}
	require.NoError(t, database.Database.Db.Create(&enrollment).Error)

	status, _ := doJSON(t, app, "PUT", fmt.Sprintf("/enrollment/%d/progress", enrollment.ID),
		fiber.Map{"percentageComplete": 150.0})
	assert.Equal(t, fiber.StatusOK, status)

	var fresh models.Enrollment
	require.NoError(t, database.Database.Db.First(&fresh, enrollment.ID).Error)
	assert.Equal(t, 100.0, fresh.Progress)
	assert.NotNil(t, fresh.LastAccessedAt)
	assert.WithinDuration(t, time.Now(), *fresh.LastAccessedAt, 5*time.Second)
}

func TestManualEnrollMarkPaidGrantsAccess(t *testing.T) {
	admin := models.User{Name: "Admin", Email: "a2@example.com", Role: models.RoleAdmin, IsActive: true}
	app := setupEnrollmentTest(t, &admin)
	course := seedPublishedCourse(t)

	student := models.User{Name: "Student", Email: "s8@example.com", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, database.Database.Db.Create(&student).Error)

	status, _ := doJSON(t, app, "POST", "/enrollment/manual",
		fiber.Map{"userId": student.ID, "courseId": course.ID, "accessGranted": true, "markPaid": true})
	assert.Equal(t, fiber.StatusOK, status)

	var enrollment models.Enrollment
	require.NoError(t, database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, models.PaymentCompleted, enrollment.PaymentStatus)
	assert.True(t, enrollment.AccessGranted)
	assert.True(t, enrollment.HasAccess(time.Now()))

	// No Payment record backs a manual grant
	var paymentCount int64
	database.Database.Db.Model(&models.Payment{}).Count(&paymentCount)
	assert.Equal(t, int64(0), paymentCount)

	// The counter only moves through completed payments
	var fresh models.Course
	require.NoError(t, database.Database.Db.First(&fresh, course.ID).Error)
	assert.Equal(t, int64(0), fresh.EnrollmentCount)
}

func TestManualEnrollUpdatesExistingEnrollment(t *testing.T) {
	admin := models.User{Name: "Admin", Email: "a3@example.com", Role: models.RoleAdmin, IsActive: true}
	app := setupEnrollmentTest(t, &admin)
	course := seedPublishedCourse(t)

	student := models.User{Name: "Student", Email: "s9@example.com", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, database.Database.Db.Create(&student).Error)

	pending := models.Enrollment{
		UserID:        student.ID,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentPending,
		AccessGranted: false,
	}
	require.NoError(t, database.Database.Db.Create(&pending).Error)

	status, _ := doJSON(t, app, "POST", "/enrollment/manual",
		fiber.Map{"userId": student.ID, "courseId": course.ID, "accessGranted": true, "markPaid": true})
	assert.Equal(t, fiber.StatusOK, status)

	var enrollments []models.Enrollment
	require.NoError(t, database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).Find(&enrollments).Error)
	require.Len(t, enrollments, 1)
	assert.True(t, enrollments[0].AccessGranted)
	assert.Equal(t, models.PaymentCompleted, enrollments[0].PaymentStatus)
}

func TestManualEnrollUnknownTargets(t *testing.T) {
	admin := models.User{Name: "Admin", Email: "a4@example.com", Role: models.RoleAdmin, IsActive: true}
	app := setupEnrollmentTest(t, &admin)
	course := seedPublishedCourse(t)

	status, _ := doJSON(t, app, "POST", "/enrollment/manual",
		fiber.Map{"userId": 9999, "courseId": course.ID, "accessGranted": true})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "POST", "/enrollment/manual",
		fiber.Map{"userId": admin.ID, "courseId": 9999, "accessGranted": true})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRevokeAccessKeepsCounter(t *testing.T) {
	admin := models.User{Name: "Admin", Email: "a5@example.com", Role: models.RoleAdmin, IsActive: true}
	app := setupEnrollmentTest(t, &admin)
	course := seedPublishedCourse(t)

	course.EnrollmentCount = 1
	require.NoError(t, database.Database.Db.Save(course).Error)

	enrollment := models.Enrollment{
		UserID:        77,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentCompleted,
		AccessGranted: true,
	}
	require.NoError(t, database.Database.Db.Create(&enrollment).Error)

	status, _ := doJSON(t, app, "PUT", fmt.Sprintf("/enrollment/%d/revoke", enrollment.ID), nil)
	assert.Equal(t, fiber.StatusOK, status)

	var fresh models.Enrollment
	require.NoError(t, database.Database.Db.First(&fresh, enrollment.ID).Error)
	assert.False(t, fresh.AccessGranted)
	assert.False(t, fresh.HasAccess(time.Now()))

	var freshCourse models.Course
	require.NoError(t, database.Database.Db.First(&freshCourse, course.ID).Error)
	assert.Equal(t, int64(1), freshCourse.EnrollmentCount)

	status, _ = doJSON(t, app, "PUT", "/enrollment/9999/revoke", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestUpdateProgressOwnershipEnforced(t *testing.T) {
	student := models.User{Name: "Student", Email: "s7@example.com", Role: models.RoleStudent, IsActive: true}
	app := setupEnrollmentTest(t, &student)
	course := seedPublishedCourse(t)

	// Enrollment owned by someone else
	other := models.Enrollment{
		UserID:        student.ID + 100,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentCompleted,
		AccessGranted: true,
	}
	require.NoError(t, database.Database.Db.Create(&other).Error)

	status, _ := doJSON(t, app, "PUT", fmt.Sprintf("/enrollment/%d/progress", other.ID),
		fiber.Map{"percentageComplete": 50.0})
	assert.Equal(t, fiber.StatusForbidden, status)
}
