package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sharebox/sharebox/pkg/logger"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		c.Locals("requestID", requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()

		latency := time.Since(start)
		statusCode := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()
		userAgent := c.Get("User-Agent")
		ip := c.IP()

		userID := logger.GetUserIDFromContext(c)
		requestBody := logger.GetRequestBodySummary(c)
		responseBody := logger.GetResponseSizeSummary(c)

		details := map[string]interface{}{
			"method":        method,
			"path":          path,
			"status_code":   statusCode,
			"latency_ms":    latency.Milliseconds(),
			"user_agent":    userAgent,
			"ip":            ip,
			"request_body":  requestBody,
			"response_body": responseBody,
			"request_id":    requestID,
		}

		if userID != nil {
			if statusCode >= 400 {
				logger.ErrorWithUser(*userID, "http_request", err, details)
			} else {
				logger.InfoWithUser(*userID, "http_request", details)
			}
		} else {
			if statusCode >= 400 {
				logger.Error("http_request", err, details)
			} else {
				logger.Info("http_request", details)
			}
		}

		return err
	}
}

var securityReasons = map[int]string{
	fiber.StatusUnauthorized: "unauthorized",
	fiber.StatusForbidden:    "access_denied",
	fiber.StatusNotFound:     "not_found",
}

// SecurityLogger records rejected requests. 404s are included because the
// file routes answer "not yours" with the same status as "missing".
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		statusCode := c.Response().StatusCode()
		reason, ok := securityReasons[statusCode]
		if !ok {
			return err
		}

		userID := logger.GetUserIDFromContext(c)
		details := map[string]interface{}{
			"method":  c.Method(),
			"path":    c.Path(),
			"ip":      c.IP(),
			"user_id": userID,
			"reason":  reason,
		}

		if userID != nil {
			logger.WarnWithUser(*userID, reason, details)
		} else {
			logger.Warn(reason+"_unauthenticated", details)
		}

		return err
	}
}
