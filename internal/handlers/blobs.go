package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/internal/storage"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/utils"
)

// BlobsHandler serves payloads by blob reference for stores whose download
// URLs point back at this server. The unguessable key is the capability.
type BlobsHandler struct {
	Store storage.BlobStore
}

func NewBlobsHandler(store storage.BlobStore) *BlobsHandler {
	return &BlobsHandler{Store: store}
}

func (h *BlobsHandler) Serve(c *fiber.Ctx) error {
	key, err := parseUUID(c.Params("key"))
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "blob not found")
	}

	blob, err := h.Store.Fetch(c.UserContext(), "blobs/"+key.String())
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "blob not found")
		}
		logger.Error("blob_serve_failed", err, map[string]interface{}{"key": key.String()})
		return utils.Error(c, fiber.StatusBadGateway, "storage service unavailable")
	}

	c.Set(fiber.HeaderContentType, blob.ContentType)
	return c.SendStream(blob.Body, int(blob.Size))
}

// RegisterBlobRoutes mounts GET /blobs/:key, matching the URLs a
// MemoryStore hands out when its base URL is the server origin.
func RegisterBlobRoutes(app *fiber.App, store storage.BlobStore) {
	app.Get("/blobs/:key", NewBlobsHandler(store).Serve)
}
