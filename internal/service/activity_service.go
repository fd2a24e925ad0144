package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/edupulse/engage-api/internal/authz"
	"github.com/edupulse/engage-api/internal/dto"
	"github.com/edupulse/engage-api/internal/models"
	"github.com/edupulse/engage-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      authz.Actor
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder records auditable moderation events.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService records audit entries and serves the admin activity feed.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, filter repository.ActivityLogFilter) ([]dto.ActivityLogResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the audit trail service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	entityType := strings.ToLower(strings.TrimSpace(entry.EntityType))
	if action == "" || entityType == "" {
		return NewError(CodeValidation, "activity action and entity type are required")
	}

	model := models.ActivityLog{
		ActorEmail: entry.Actor.Identity,
		ActorRole:  string(entry.Actor.Role),
		Action:     action,
		EntityType: entityType,
		EntityID:   entry.EntityID,
		Metadata:   scrubMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity log")
		return WrapError(CodeInternal, "failed to persist activity log", err)
	}
	return nil
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityLogFilter) ([]dto.ActivityLogResponse, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, WrapError(CodeInternal, "failed to load activity log", err)
	}
	return dto.NewActivityLogResponseSlice(entries), nil
}

// scrubMetadata masks values under keys that tend to carry secrets.
func scrubMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	scrubbed := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "token") || strings.Contains(lower, "password") {
			scrubbed[key] = "***"
			continue
		}
		scrubbed[key] = value
	}
	return scrubbed
}
