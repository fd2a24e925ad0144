package notification

import "time"

// Kinds of notifications emitted by the engagement engine. The store does
// not branch on kind; it is caller-supplied display metadata.
const (
	KindAchievement     = "achievement"
	KindStreak          = "streak"
	KindClassReminder   = "class_reminder"
	KindProgress        = "progress"
	KindSystem          = "system"
	KindStudentAdded    = "student_added"
	KindCourseStarted   = "course_started"
	KindCourseCompleted = "course_completed"
	KindWelcome         = "welcome"
	KindAttendanceAlert = "attendance_alert"
	KindError           = "error"
)

// Record is a stored notification addressed to a single recipient.
type Record struct {
	ID        string                 `json:"id"`
	Recipient string                 `json:"recipient"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Kind      string                 `json:"kind"`
	Read      bool                   `json:"read"`
	Link      string                 `json:"link,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Message is the caller-supplied portion of a new notification.
type Message struct {
	Title    string
	Body     string
	Kind     string
	Link     string
	Metadata map[string]interface{}
}

// ListOptions filters and truncates a recipient's notification listing.
type ListOptions struct {
	UnreadOnly bool
	Limit      int
}
