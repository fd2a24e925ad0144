package dto

import (
	"time"

	"github.com/edupulse/engage-api/internal/notification"
)

// NotificationResponse is the serialized representation of a stored
// notification.
type NotificationResponse struct {
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

// NewNotificationResponse converts a store record into a DTO.
func NewNotificationResponse(record notification.Record) NotificationResponse {
	return NotificationResponse{
		ID:        record.ID,
		Recipient: record.Recipient,
		Title:     record.Title,
		Body:      record.Body,
		Kind:      record.Kind,
		Read:      record.Read,
		Link:      record.Link,
		Metadata:  record.Metadata,
		CreatedAt: record.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of records into DTOs.
func NewNotificationResponseSlice(records []notification.Record) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(records))
	for _, record := range records {
		out = append(out, NewNotificationResponse(record))
	}
	return out
}

// MarkManyReadRequest lists the notification ids to mark as read.
type MarkManyReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// UnreadCountResponse reports how many unread notifications remain.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
