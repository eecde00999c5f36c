package handlers

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/internal/middleware"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/utils"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid email")
	}
	if len(req.Password) < 8 {
		return utils.Error(c, fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	db := h.DB.WithContext(c.UserContext())
	taken, err := emailTaken(db, req.Email)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing user")
	}
	if taken {
		return utils.Error(c, fiber.StatusConflict, "email already registered")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Email:        &req.Email,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
	}
	if req.Name != "" {
		user.Name = &req.Name
	}

	if err := db.Create(&user).Error; err != nil {
		// A concurrent registration can win between the check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Error(c, fiber.StatusConflict, "email already registered")
		}
		if taken, _ := emailTaken(db, req.Email); taken {
			return utils.Error(c, fiber.StatusConflict, "email already registered")
		}
		logger.Error("user_register_failed", err, map[string]interface{}{"request_id": getRequestID(c)})
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"named":      user.Name != nil,
		"request_id": getRequestID(c),
	})
	return h.issueSession(c, fiber.StatusCreated, &user)
}

func emailTaken(db *gorm.DB, email string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// issueSession answers with a fresh bearer token for user.
func (h *AuthHandler) issueSession(c *fiber.Ctx, status int, user *models.User) error {
	token, err := utils.GenerateToken(user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}
	return utils.Success(c, status, fiber.Map{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email and password are required")
	}

	var user models.User
	err := h.DB.WithContext(c.UserContext()).First(&user, "email = ?", req.Email).Error
	if err == nil && utils.CheckPassword(req.Password, user.PasswordHash) {
		logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{"ip": c.IP()})
		return h.issueSession(c, fiber.StatusOK, &user)
	}

	// Unknown email and wrong password look the same to the client.
	logger.Warn("login_failed", map[string]interface{}{
		"known_user": err == nil,
		"ip":         c.IP(),
	})
	return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
}

// Me backs the CLI's whoami and login verification.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, user)
}
