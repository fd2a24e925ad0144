package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/engage-api/internal/dto"
	"github.com/edupulse/engage-api/internal/observability"
	"github.com/edupulse/engage-api/internal/service"
	"github.com/edupulse/engage-api/internal/utils"
)

// NotificationHandler serves a recipient's notification feed, read-state
// mutations, and the SSE live stream.
type NotificationHandler struct {
	service   service.NotificationService
	logger    zerolog.Logger
	keepAlive time.Duration
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger, keepAlive time.Duration) *NotificationHandler {
	return &NotificationHandler{
		service:   service,
		logger:    logger.With().Str("component", "notification_handler").Logger(),
		keepAlive: keepAlive,
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Get("/stream", h.stream)
	router.Patch("/:id/read", h.markRead)
	router.Post("/read", h.markManyRead)
	router.Post("/read-all", h.markAllRead)
	router.Delete("/:id", h.delete)
}

func (h *NotificationHandler) recipient(c *fiber.Ctx) string {
	return strings.TrimSpace(actorFromContext(c).Identity)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	recipient := h.recipient(c)
	if recipient == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	notifications, err := h.service.List(recipient, parseQueryBool(c, "unread_only"), limit)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "notifications", notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	recipient := h.recipient(c)
	if recipient == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	count, err := h.service.UnreadCount(recipient)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "unread count", count)
}

func (h *NotificationHandler) stream(c *fiber.Ctx) error {
	recipient := h.recipient(c)
	if recipient == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	stream, cleanup := h.service.Subscribe(recipient)

	keepAliveInterval := h.keepAlive
	if keepAliveInterval <= 0 {
		keepAliveInterval = 30 * time.Second
	}

	observability.StreamClientsActive().Inc()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			observability.StreamClientsActive().Dec()
		}()

		ticker := time.NewTicker(keepAliveInterval / 2)
		defer ticker.Stop()

		for {
			select {
			case record, ok := <-stream:
				if !ok {
					return
				}
				if err := writeNotificationEvent(w, dto.NewNotificationResponse(record)); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write notification keepalive")
					return
				}
			}
		}
	})

	return nil
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	recipient := h.recipient(c)
	if recipient == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "notification id required")
	}

	record, err := h.service.MarkRead(recipient, id)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "notification updated", record)
}

func (h *NotificationHandler) markManyRead(c *fiber.Ctx) error {
	recipient := h.recipient(c)
	if recipient == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.MarkManyReadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.service.MarkManyRead(recipient, payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "notifications updated", fiber.Map{"updated": updated})
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	recipient := h.recipient(c)
	if recipient == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	updated := h.service.MarkAllRead(recipient)
	return utils.SendSuccess(c, "notifications updated", fiber.Map{"updated": updated})
}

func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	recipient := h.recipient(c)
	if recipient == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "notification id required")
	}

	if err := h.service.Delete(recipient, id); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "notification deleted", nil)
}

func writeNotificationEvent(w *bufio.Writer, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: notification\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", body); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
