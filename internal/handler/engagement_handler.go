package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/engage-api/internal/dto"
	"github.com/edupulse/engage-api/internal/service"
	"github.com/edupulse/engage-api/internal/utils"
)

// EngagementHandler exposes the domain event entry points that drive
// progression and notification fan-out.
type EngagementHandler struct {
	service service.EngagementService
	logger  zerolog.Logger
}

// NewEngagementHandler constructs a handler instance.
func NewEngagementHandler(service service.EngagementService, logger zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		service: service,
		logger:  logger.With().Str("component", "engagement_handler").Logger(),
	}
}

// Register binds the event routes.
func (h *EngagementHandler) Register(router fiber.Router) {
	router.Post("/lesson-completed", h.lessonCompleted)
	router.Post("/student-added", h.studentAdded)
	router.Post("/attendance-check", h.attendanceCheck)
	router.Post("/heartbeat", h.heartbeat)
}

// RegisterModeration binds the admin-only account moderation routes.
func (h *EngagementHandler) RegisterModeration(router fiber.Router) {
	router.Post("/:id/approve", h.approveAccount)
	router.Post("/:id/reject", h.rejectAccount)
}

func (h *EngagementHandler) lessonCompleted(c *fiber.Ctx) error {
	var payload dto.LessonCompletedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.CompleteLesson(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Uint("student_id", payload.StudentID).Msg("lesson completion rejected")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "lesson completion processed", resp)
}

func (h *EngagementHandler) approveAccount(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	resp, err := h.service.ApproveAccount(requestContext(c), actorFromContext(c), studentID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "account approved", resp)
}

func (h *EngagementHandler) rejectAccount(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var payload dto.AccountRejectRequest
	if err := c.BodyParser(&payload); err != nil && len(c.Body()) > 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.RejectAccount(requestContext(c), actorFromContext(c), studentID, payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "account rejected", resp)
}

func (h *EngagementHandler) studentAdded(c *fiber.Ctx) error {
	var payload dto.StudentAddedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RecordStudentAdded(requestContext(c), actorFromContext(c), payload); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "student added event processed", nil)
}

func (h *EngagementHandler) attendanceCheck(c *fiber.Ctx) error {
	var payload dto.AttendanceCheckRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	report, err := h.service.CheckAttendance(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "attendance check completed", report)
}

func (h *EngagementHandler) heartbeat(c *fiber.Ctx) error {
	var payload dto.HeartbeatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RecordHeartbeat(requestContext(c), payload); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "heartbeat recorded", nil)
}
