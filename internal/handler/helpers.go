package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/engage-api/internal/authz"
	"github.com/edupulse/engage-api/internal/middleware"
	"github.com/edupulse/engage-api/internal/service"
	"github.com/edupulse/engage-api/internal/utils"
)

// actorFromContext reconstructs the authenticated actor bound by the JWT
// middleware. The zero actor (empty identity) means no authentication.
func actorFromContext(c *fiber.Ctx) authz.Actor {
	email := ""
	if v := c.Locals(middleware.LocalsUserEmail); v != nil {
		if str, ok := v.(string); ok {
			email = str
		}
	}

	role := ""
	if v := c.Locals(middleware.LocalsUserRole); v != nil {
		if str, ok := v.(string); ok {
			role = str
		}
	}

	return authz.NewActor(role, email)
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseQueryBool(c *fiber.Ctx, key string) bool {
	value := strings.ToLower(strings.TrimSpace(c.Query(key)))
	return value == "true" || value == "1"
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || parsed == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(parsed), nil
}

// sendServiceError maps a coded service error onto the HTTP envelope.
func sendServiceError(c *fiber.Ctx, err error) error {
	return utils.SendError(c, statusForCode(service.CodeOf(err)), err.Error())
}

func statusForCode(code service.ErrorCode) int {
	switch code {
	case service.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case service.CodeForbidden:
		return fiber.StatusForbidden
	case service.CodeNotFound:
		return fiber.StatusNotFound
	case service.CodeValidation:
		return fiber.StatusBadRequest
	case service.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
