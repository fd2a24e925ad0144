package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/engage-api/internal/repository"
	"github.com/edupulse/engage-api/internal/service"
	"github.com/edupulse/engage-api/internal/utils"
)

// ActivityHandler serves the admin moderation audit feed.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs a handler instance.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register binds the activity feed routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.service.List(requestContext(c), repository.ActivityLogFilter{
		ActorEmail: strings.TrimSpace(c.Query("actor")),
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		Limit:      limit,
	})
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "activity log", entries)
}
