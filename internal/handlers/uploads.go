package handlers

import (
	"bytes"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/internal/middleware"
	"github.com/sharebox/sharebox/internal/services"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/utils"
)

type UploadsHandler struct {
	Registry *services.FileRegistry
}

func NewUploadsHandler(registry *services.FileRegistry) *UploadsHandler {
	return &UploadsHandler{Registry: registry}
}

// RequestSlot hands out a single-use upload URL. The token in the URL is the
// only credential the commit step checks.
func (h *UploadsHandler) RequestSlot(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)

	slot, err := h.Registry.RequestUploadSlot(c.UserContext(), currentUser)
	if err != nil {
		return respondError(c, err, "failed allocating upload slot")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token":     slot.Token,
		"uploadURL": c.BaseURL() + "/api/uploads/" + url.PathEscape(slot.Token),
		"expiresAt": slot.ExpiresAt,
	})
}

func (h *UploadsHandler) Commit(c *fiber.Ctx) error {
	token, err := url.PathUnescape(c.Params("token"))
	if err != nil || token == "" {
		return utils.Error(c, fiber.StatusBadRequest, "invalid or expired upload slot")
	}

	body := c.Body()
	storageID, err := h.Registry.CommitUpload(c.UserContext(), token, bytes.NewReader(body), int64(len(body)), c.Get(fiber.HeaderContentType))
	if err != nil {
		return respondError(c, err, "failed storing upload")
	}

	logger.Info("upload_committed", map[string]interface{}{
		"storage_id": storageID,
		"size":       len(body),
		"request_id": getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"storageId": storageID})
}
