package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

// LogOperation records the outcome of one service call. Expected client
// mistakes are logged at warn, everything unexpected at error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, clientID string, duration time.Duration, err error, args ...any) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err) || IsBusinessRule(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsUnauthorized(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			level = slog.LevelInfo
			status = "not_found"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		}
	}

	attrs := []any{
		"operation", operation,
		"client_id", clientID,
		"status", status,
		"duration", duration,
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())

		var bre *BusinessRuleError
		var ve ValidationErrors
		switch {
		case errors.As(err, &bre):
			attrs = append(attrs, "business_rule", bre.Rule)
		case errors.As(err, &ve):
			attrs = append(attrs, "validation_errors_count", len(ve))
		}
	}
	attrs = append(attrs, args...)

	l.logger.Log(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *ServiceLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}
