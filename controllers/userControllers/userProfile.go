package userController

import (
	"log"

	"lms/database"
	"lms/middleware"
	"lms/models"
	userValidator "lms/validators/user"

	"github.com/gofiber/fiber/v2"
)

// canActOn allows the owner of the resource or an admin
func canActOn(caller models.User, targetID uint) bool {
	return caller.ID == targetID || caller.Role == models.RoleAdmin
}

// GetUser returns a user profile (owner or admin)
func GetUser(c *fiber.Ctx) error {
	caller, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	targetID := c.Locals("targetUserID").(uint)

	if !canActOn(caller, targetID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to view this user!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}

// UpdateUser updates profile fields (owner or admin)
func UpdateUser(c *fiber.Ctx) error {
	caller, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	targetID := c.Locals("targetUserID").(uint)

	if !canActOn(caller, targetID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to update this user!", nil)
	}

	reqData, ok := c.Locals("validatedProfileUpdate").(*userValidator.ProfileUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	// Update only provided fields
	if reqData.Name != "" {
		user.Name = reqData.Name
	}
	if reqData.ProfileImage != "" {
		user.ProfileImage = reqData.ProfileImage
	}
	if reqData.Bio != "" {
		user.Bio = reqData.Bio
	}

	if err := database.Database.Db.Save(&user).Error; err != nil {
		log.Printf("Error updating user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}

// DeleteUser soft deletes a user account (owner or admin)
func DeleteUser(c *fiber.Ctx) error {
	caller, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	targetID := c.Locals("targetUserID").(uint)

	if !canActOn(caller, targetID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to delete this user!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	user.IsDeleted = true
	if err := database.Database.Db.Save(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}
