package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sharebox/sharebox/internal/models"
	"github.com/sharebox/sharebox/pkg/logger"
	"github.com/sharebox/sharebox/pkg/utils"
	"gorm.io/gorm"
)

const (
	currentUserKey = "currentUser"
	userIDKey      = "userID"
)

type AuthMiddleware struct {
	DB *gorm.DB
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{DB: db}
}

func CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
	})
}

// authFailure describes why a request could not be authenticated.
type authFailure struct {
	event   string
	message string
}

var (
	failureMissingHeader = &authFailure{"jwt_missing_header", "missing authorization header"}
	failureBadFormat     = &authFailure{"jwt_invalid_format", "invalid authorization format"}
	failureInvalidToken  = &authFailure{"jwt_validation_failed", "invalid or expired token"}
	failureUnknownUser   = &authFailure{"jwt_user_not_found", "user not found"}
)

func (a *AuthMiddleware) resolve(c *fiber.Ctx) (*models.User, *authFailure) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, failureMissingHeader
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		return nil, failureBadFormat
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return nil, failureInvalidToken
	}
	userID, _ := claims.UserID()

	var user models.User
	if err := a.DB.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		return nil, failureUnknownUser
	}
	return &user, nil
}

func setCurrentUser(c *fiber.Ctx, user *models.User) {
	c.Locals(currentUserKey, user)
	c.Locals(userIDKey, user.ID.String())
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	user, failure := a.resolve(c)
	if failure != nil {
		logger.Warn(failure.event, map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, failure.message)
	}

	setCurrentUser(c, user)
	return c.Next()
}

// OptionalAuth resolves the caller when a valid token is present and
// otherwise continues anonymously.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	if user, failure := a.resolve(c); failure == nil {
		setCurrentUser(c, user)
	}
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
