package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// LabelIDKey is the context key for the label being printed
	LabelIDKey contextKey = "label_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if
// not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enrichedLogger := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// WithLabelID adds the label id to context and returns enriched logger
func WithLabelID(ctx context.Context, logger *zap.Logger, labelID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, LabelIDKey, labelID)
	enrichedLogger := logger.With(zap.String("label_id", labelID))
	return WithContext(ctx, enrichedLogger), enrichedLogger
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetLabelID retrieves the label id from context
func GetLabelID(ctx context.Context) string {
	if labelID, ok := ctx.Value(LabelIDKey).(string); ok {
		return labelID
	}
	return ""
}

// L returns the context logger, or fallback when the context carries none.
// Usage: logger.L(ctx, s.logger).Info("message", zap.String("key", "value"))
func L(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return l
	}
	if fallback == nil {
		return zap.NewNop()
	}
	l := fallback
	if requestID := GetRequestID(ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	if labelID := GetLabelID(ctx); labelID != "" {
		l = l.With(zap.String("label_id", labelID))
	}
	return l
}
