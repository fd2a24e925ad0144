package dto

// LessonCompletedRequest is the payload for a lesson completion event.
// XPHint is a caller-supplied fallback reward used only when the lesson has
// no canonical reward of its own.
type LessonCompletedRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	LessonID  uint `json:"lesson_id" validate:"required"`
	XPHint    *int `json:"xp_hint" validate:"omitempty,min=0"`
}

// LessonCompletedResponse reports the persisted progression after a
// completion event.
type LessonCompletedResponse struct {
	StudentID    uint `json:"student_id"`
	LessonID     uint `json:"lesson_id"`
	XPAwarded    int  `json:"xp_awarded"`
	TotalXP      int  `json:"total_xp"`
	CurrentLevel int  `json:"current_level"`
	LeveledUp    bool `json:"leveled_up"`
}

// AccountRejectRequest carries the optional moderation reason.
type AccountRejectRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// StudentStatusResponse reports a student's account status after moderation.
type StudentStatusResponse struct {
	StudentID uint   `json:"student_id"`
	Status    string `json:"status"`
}

// StudentAddedRequest identifies the student a parent just added.
type StudentAddedRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
}

// AttendanceCheckRequest triggers an online/offline sweep over a class.
type AttendanceCheckRequest struct {
	ClassID       uint `json:"class_id" validate:"required"`
	NotifyParents bool `json:"notify_parents"`
}

// AttendanceStudent is one booked student in an attendance report.
type AttendanceStudent struct {
	StudentID uint   `json:"student_id"`
	Name      string `json:"name"`
}

// AttendanceReport partitions a class's booked students by presence.
type AttendanceReport struct {
	ClassID         uint                `json:"class_id"`
	Online          []AttendanceStudent `json:"online"`
	Offline         []AttendanceStudent `json:"offline"`
	ParentReminders int                 `json:"parent_reminders"`
}

// HeartbeatRequest records a student presence heartbeat.
type HeartbeatRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
}
