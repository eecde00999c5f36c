package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sharebox/sharebox/internal/middleware"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/internal/services"
	"github.com/sharebox/sharebox/pkg/utils"
)

type ContributionsHandler struct {
	Ledger *services.ContributionLedger
}

func NewContributionsHandler(ledger *services.ContributionLedger) *ContributionsHandler {
	return &ContributionsHandler{Ledger: ledger}
}

type createContributionRequest struct {
	FileID  string  `json:"fileId"`
	Kind    string  `json:"kind"`
	Message *string `json:"message"`
}

func (h *ContributionsHandler) Create(c *fiber.Ctx) error {
	var req createContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID := uuid.Nil
	if strings.TrimSpace(req.FileID) != "" {
		parsed, err := parseUUID(req.FileID)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
		}
		fileID = parsed
	}

	contribution, err := h.Ledger.RecordContribution(c.UserContext(), currentUser, fileID, models.ContributionKind(strings.ToLower(strings.TrimSpace(req.Kind))), req.Message)
	if err != nil {
		return respondError(c, err, "failed recording contribution")
	}
	return utils.Success(c, fiber.StatusCreated, contribution)
}

func (h *ContributionsHandler) List(c *fiber.Ctx) error {
	entries, err := h.Ledger.ListOwnContributions(c.UserContext(), middleware.GetCurrentUser(c))
	if err != nil {
		return respondError(c, err, "failed listing contributions")
	}
	return utils.Success(c, fiber.StatusOK, entries)
}
