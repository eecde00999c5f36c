package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/internal/middleware"
	"github.com/sharebox/sharebox/internal/services"
	"github.com/sharebox/sharebox/pkg/utils"
)

type FilesHandler struct {
	Registry   *services.FileRegistry
	Accounting *services.StorageAccounting
}

func NewFilesHandler(registry *services.FileRegistry, accounting *services.StorageAccounting) *FilesHandler {
	return &FilesHandler{Registry: registry, Accounting: accounting}
}

type createFileRequest struct {
	Name        string   `json:"name"`
	Size        int64    `json:"size"`
	Type        string   `json:"type"`
	StorageID   string   `json:"storageId"`
	IsPublic    *bool    `json:"isPublic"`
	Tags        []string `json:"tags"`
	Description *string  `json:"description"`
}

func (h *FilesHandler) Create(c *fiber.Ctx) error {
	var req createFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := h.Registry.CreateFileRecord(c.UserContext(), middleware.GetCurrentUser(c), services.CreateFileInput{
		Name:        req.Name,
		Size:        req.Size,
		Type:        req.Type,
		BlobRef:     req.StorageID,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err, "failed creating file")
	}

	return utils.Success(c, fiber.StatusCreated, file)
}

func (h *FilesHandler) ListOwn(c *fiber.Ctx) error {
	files, err := h.Registry.ListOwnFiles(c.UserContext(), middleware.GetCurrentUser(c), listOptions(c))
	if err != nil {
		return respondError(c, err, "failed listing files")
	}
	return utils.Success(c, fiber.StatusOK, files)
}

func (h *FilesHandler) ListPublic(c *fiber.Ctx) error {
	files, err := h.Registry.ListPublicFiles(c.UserContext(), listOptions(c))
	if err != nil {
		return respondError(c, err, "failed listing public files")
	}
	return utils.Success(c, fiber.StatusOK, files)
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Registry.GetFile(c.UserContext(), middleware.GetCurrentUser(c), fileID)
	if err != nil {
		return respondError(c, err, "failed loading file")
	}
	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FilesHandler) Download(c *fiber.Ctx) error {
	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, blob, err := h.Registry.OpenDownload(c.UserContext(), middleware.GetCurrentUser(c), fileID)
	if err != nil {
		return respondError(c, err, "failed downloading file")
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = blob.ContentType
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	// fasthttp closes the body once streamed.
	return c.SendStream(blob.Body, int(blob.Size))
}

func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	if err := h.Registry.DeleteFile(c.UserContext(), middleware.GetCurrentUser(c), fileID); err != nil {
		return respondError(c, err, "failed deleting file")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *FilesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Accounting.GetStorageStats(c.UserContext(), middleware.GetCurrentUser(c))
	if err != nil {
		return respondError(c, err, "failed computing storage stats")
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

func (h *FilesHandler) Usage(c *fiber.Ctx) error {
	report, err := h.Accounting.Usage(c.UserContext(), middleware.GetCurrentUser(c))
	if err != nil {
		return respondError(c, err, "failed computing storage usage")
	}
	return utils.Success(c, fiber.StatusOK, report)
}

func listOptions(c *fiber.Ctx) services.ListOptions {
	return services.ListOptions{Query: strings.TrimSpace(c.Query("q"))}
}
