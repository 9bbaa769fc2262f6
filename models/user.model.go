package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	gorm.Model
	Name         string     `json:"name" gorm:"default:''"`
	Email        string     `json:"email" gorm:"unique;not null"`
	Role         string     `json:"role" gorm:"default:'STUDENT'"` // STUDENT, TEACHER, ADMIN
	Password     string     `json:"-" gorm:"not null"`
	ProfileImage string     `json:"profile_image" gorm:"default:''"`
	Bio          string     `json:"bio" gorm:"default:''"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLogin    *time.Time `json:"last_login" gorm:"default:NULL"`
	IsDeleted    bool       `json:"-" gorm:"default:false"`
}
