package models

import "time"

// Account statuses a student moves through after registration.
const (
	StudentStatusPending  = "pending"
	StudentStatusApproved = "approved"
	StudentStatusRejected = "rejected"
)

// Student represents a learner account with its progression counters and
// guardian linkage. CurrentLevel is always derived from TotalXP; it is never
// written independently of an XP mutation.
type Student struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Status       string     `gorm:"size:32;not null;default:pending" json:"status"`
	TotalXP      int        `gorm:"not null;default:0" json:"total_xp"`
	CurrentLevel int        `gorm:"not null;default:1" json:"current_level"`
	GuardianID   *uint      `gorm:"index" json:"guardian_id"`
	ParentEmail  string     `gorm:"size:255" json:"parent_email"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ParentProfile represents a guardian account students can be linked to.
type ParentProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
