package models

import "time"

// Lesson represents a unit of course content that awards XP on completion.
// XPReward is nil when the author did not set a canonical reward; the
// completion flow then falls back to the caller's hint or the default.
type Lesson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index" json:"course_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	XPReward  *int      `json:"xp_reward"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LessonCompletion records that a student completed a lesson. The unique
// index makes a retried completion request detectable instead of silently
// double-awarding XP.
type LessonCompletion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_lesson_completion" json:"student_id"`
	LessonID  uint      `gorm:"not null;uniqueIndex:idx_lesson_completion" json:"lesson_id"`
	XPAwarded int       `gorm:"not null" json:"xp_awarded"`
	CreatedAt time.Time `json:"created_at"`
}
