package models

import "time"

// ClassSession represents a scheduled live class led by an instructor.
type ClassSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	InstructorID uint      `gorm:"index" json:"instructor_id"`
	StartsAt     time.Time `json:"starts_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClassBooking links a student to a class session they are expected to attend.
type ClassBooking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student Student `json:"student"`
}
