package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/edupulse/engage-api/internal/dto"
	"github.com/edupulse/engage-api/internal/notification"
)

// NotificationService exposes a recipient's notification feed with
// read-state management over the bounded in-memory store.
type NotificationService interface {
	List(recipient string, unreadOnly bool, limit int) ([]dto.NotificationResponse, error)
	UnreadCount(recipient string) (dto.UnreadCountResponse, error)
	MarkRead(recipient, id string) (dto.NotificationResponse, error)
	MarkAllRead(recipient string) int
	MarkManyRead(recipient string, payload dto.MarkManyReadRequest) (int, error)
	Delete(recipient, id string) error
	Subscribe(recipient string) (<-chan notification.Record, func())
}

type notificationService struct {
	store     *notification.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewNotificationService constructs a notification service over the store.
func NewNotificationService(store *notification.Store, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	return &notificationService{
		store:     store,
		validator: validate,
		logger:    logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) List(recipient string, unreadOnly bool, limit int) ([]dto.NotificationResponse, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, NewError(CodeUnauthorized, "recipient is required")
	}

	records := s.store.List(recipient, notification.ListOptions{UnreadOnly: unreadOnly, Limit: limit})
	return dto.NewNotificationResponseSlice(records), nil
}

func (s *notificationService) UnreadCount(recipient string) (dto.UnreadCountResponse, error) {
	if strings.TrimSpace(recipient) == "" {
		return dto.UnreadCountResponse{}, NewError(CodeUnauthorized, "recipient is required")
	}
	return dto.UnreadCountResponse{Count: s.store.UnreadCount(recipient)}, nil
}

func (s *notificationService) MarkRead(recipient, id string) (dto.NotificationResponse, error) {
	record, ok := s.store.MarkRead(recipient, id)
	if !ok {
		return dto.NotificationResponse{}, NewError(CodeNotFound, "notification not found")
	}
	return dto.NewNotificationResponse(record), nil
}

func (s *notificationService) MarkAllRead(recipient string) int {
	return s.store.MarkAllRead(recipient)
}

func (s *notificationService) MarkManyRead(recipient string, payload dto.MarkManyReadRequest) (int, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, WrapError(CodeValidation, "invalid mark read payload", err)
	}
	return s.store.MarkManyRead(recipient, payload.IDs), nil
}

func (s *notificationService) Delete(recipient, id string) error {
	if !s.store.Delete(recipient, id) {
		return NewError(CodeNotFound, "notification not found")
	}
	return nil
}

func (s *notificationService) Subscribe(recipient string) (<-chan notification.Record, func()) {
	return s.store.Subscribe(recipient)
}
