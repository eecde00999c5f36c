package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/internal/services"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/utils"
)

type errorMapping struct {
	target  error
	status  int
	message string // empty keeps the wrapped error text
}

var errorMappings = []errorMapping{
	{services.ErrUnauthenticated, fiber.StatusUnauthorized, "unauthorized"},
	{services.ErrNotFoundOrUnauthorized, fiber.StatusNotFound, "file not found or unauthorized"},
	{services.ErrUpstreamStore, fiber.StatusBadGateway, "storage service unavailable"},
	{services.ErrResourceUnavailable, fiber.StatusGone, "file not available for download"},
	{services.ErrInvalidInput, fiber.StatusBadRequest, ""},
	{services.ErrInvalidUploadSlot, fiber.StatusBadRequest, "invalid or expired upload slot"},
	{services.ErrBlobAlreadyReferenced, fiber.StatusConflict, "storage id is already referenced by another file"},
}

// respondError translates a service error into the response envelope.
// Anything unrecognised is logged and reported as fallback with a 500.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = strings.TrimPrefix(err.Error(), m.target.Error()+": ")
		}
		return utils.Error(c, m.status, message)
	}

	details := map[string]interface{}{
		"path":       c.Path(),
		"request_id": getRequestID(c),
	}
	if userID := logger.GetUserIDFromContext(c); userID != nil {
		logger.ErrorWithUser(*userID, "request_failed", err, details)
	} else {
		logger.Error("request_failed", err, details)
	}
	return utils.Error(c, fiber.StatusInternalServerError, fallback)
}
