package models

import "gorm.io/gorm"

// Course status
const (
	CourseDraft     = "DRAFT"
	CoursePublished = "PUBLISHED"
	CourseArchived  = "ARCHIVED"
)

// Course represents a learning course owned by an instructor
type Course struct {
	gorm.Model
	Title           string  `json:"title" gorm:"unique;not null"`
	Description     string  `json:"description"`
	InstructorID    uint    `json:"instructor_id" gorm:"index;not null"`
	Price           float64 `json:"price" gorm:"default:0"`
	Currency        string  `json:"currency" gorm:"default:'USD'"`
	Category        string  `json:"category"`
	Level           string  `json:"level" gorm:"default:'BEGINNER'"` // BEGINNER, INTERMEDIATE, ADVANCED
	Status          string  `json:"status" gorm:"default:'DRAFT'"`   // DRAFT, PUBLISHED, ARCHIVED
	ThumbnailURL    string  `json:"thumbnail_url"`
	EnrollmentCount int64   `json:"enrollment_count" gorm:"default:0"`
	RatingSum       int64   `json:"-" gorm:"default:0"`
	RatingCount     int64   `json:"rating_count" gorm:"default:0"`
	IsDeleted       bool    `json:"-" gorm:"default:false"`
}

// CourseModule represents a section/module within a course
type CourseModule struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // Module order in course
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// Material represents a piece of content within a module
type Material struct {
	gorm.Model
	CourseID   uint   `json:"course_id" gorm:"index;not null"`
	ModuleID   uint   `json:"module_id" gorm:"index;not null"`
	Title      string `json:"title"`
	Type       string `json:"type" gorm:"default:'VIDEO'"` // VIDEO, PDF, TEXT, IMAGE
	URL        string `json:"url"`
	OrderIndex int    `json:"order_index" gorm:"default:0"` // Order within module
	IsPreview  bool   `json:"is_preview" gorm:"default:false"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}
