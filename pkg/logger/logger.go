package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

type Options struct {
	Level  LogLevel
	Format string
}

type Logger struct {
	handler slog.Handler
}

var globalLogger *Logger

// New builds a logger writing one entry per line to output. Format is
// "json" (default) or "text".
func New(output io.Writer, opts Options) *Logger {
	if output == nil {
		output = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(output, handlerOpts)
	}
	return &Logger{handler: handler}
}

// Init installs the process-wide logger used by the package-level helpers.
func Init(opts Options) {
	globalLogger = New(os.Stdout, opts)
	slog.SetDefault(slog.New(globalLogger.handler))
}

// SetOutput replaces the process-wide logger; tests use it to capture entries.
func SetOutput(output io.Writer, opts Options) {
	globalLogger = New(output, opts)
}

func parseLevel(level LogLevel) slog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) log(level slog.Level, action string, userID *string, details map[string]interface{}, err error) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}

	record := slog.NewRecord(time.Now(), level, action, 0)
	record.AddAttrs(slog.String("action", action))
	if userID != nil {
		record.AddAttrs(slog.String("user_id", *userID))
	}
	if len(details) > 0 {
		attrs := make([]any, 0, len(details))
		for key, value := range details {
			attrs = append(attrs, slog.Any(key, value))
		}
		record.AddAttrs(slog.Group("details", attrs...))
	}
	if err != nil {
		record.AddAttrs(slog.String("error", err.Error()))
	}

	_ = l.handler.Handle(ctx, record)
}

func Debug(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(slog.LevelDebug, action, nil, details, nil)
	}
}

func Info(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(slog.LevelInfo, action, nil, details, nil)
	}
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(slog.LevelInfo, action, &userID, details, nil)
	}
}

func Warn(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(slog.LevelWarn, action, nil, details, nil)
	}
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(slog.LevelWarn, action, &userID, details, nil)
	}
}

func Error(action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(slog.LevelError, action, nil, details, err)
	}
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(slog.LevelError, action, &userID, details, err)
	}
}

func GetUserIDFromContext(c *fiber.Ctx) *string {
	if userID := c.Locals("userID"); userID != nil {
		if id, ok := userID.(string); ok {
			return &id
		}
	}
	return nil
}

var sensitiveFields = []string{"password", "secret", "token"}

func redactSensitiveFields(jsonMap map[string]interface{}) {
	for _, field := range sensitiveFields {
		if _, exists := jsonMap[field]; exists {
			jsonMap[field] = "[REDACTED]"
		}
	}
}

// GetRequestBodySummary describes the request body without logging payload
// bytes; small JSON bodies are included with secrets redacted.
func GetRequestBodySummary(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return "empty"
	}

	if len(body) > 1024 {
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(body, &jsonMap); err == nil {
		redactSensitiveFields(jsonMap)
		if jsonBytes, err := json.Marshal(jsonMap); err == nil {
			if len(jsonBytes) > 200 {
				return string(jsonBytes[:200]) + "..."
			}
			return string(jsonBytes)
		}
	}

	return fmt.Sprintf("binary (%d bytes)", len(body))
}

func GetResponseSizeSummary(c *fiber.Ctx) string {
	body := c.Response().Body()
	if len(body) == 0 {
		return "empty"
	}
	if len(body) > 1024 {
		return fmt.Sprintf("large (%d bytes)", len(body))
	}
	return fmt.Sprintf("small (%d bytes)", len(body))
}

func GenerateRequestID() string {
	return uuid.New().String()
}
