package dto

import (
	"time"

	"github.com/edupulse/engage-api/internal/models"
)

// ActivityLogResponse is the serialized representation of an audit entry.
type ActivityLogResponse struct {
	ID         uint                   `json:"id"`
	ActorEmail string                 `json:"actor_email"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewActivityLogResponse converts a persisted audit entry into a DTO.
func NewActivityLogResponse(entry models.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:         entry.ID,
		ActorEmail: entry.ActorEmail,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// NewActivityLogResponseSlice converts a slice of audit entries into DTOs.
func NewActivityLogResponseSlice(entries []models.ActivityLog) []ActivityLogResponse {
	out := make([]ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewActivityLogResponse(entry))
	}
	return out
}
