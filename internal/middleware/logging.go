package middleware

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the global structured logger instance used throughout the application.
var Logger *slog.Logger

type requestInfoKey struct{}

// requestInfo is attached to the request context once per request so that
// every log line below the handler carries the same identifiers.
type requestInfo struct {
	RequestID string
	UserID    uint
}

// ctxHandler decorates records with request identifiers and the active trace.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		if info.RequestID != "" {
			r.AddAttrs(slog.String("request_id", info.RequestID))
		}
		if info.UserID != 0 {
			r.AddAttrs(slog.Uint64("user_id", uint64(info.UserID)))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
}

// NewLogger builds a context-aware stdout logger: JSON in production, text elsewhere.
func NewLogger(env, level string) *slog.Logger {
	json := env == "production" || env == "prod"
	return NewLoggerTo(os.Stdout, json, level)
}

// NewLoggerTo builds a context-aware logger writing to w.
func NewLoggerTo(w io.Writer, json bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextMiddleware copies the request id and resolved actor from Fiber locals
// into the request context. Register it after requestid and Actor.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		info := &requestInfo{}
		if rid, ok := c.Locals("requestid").(string); ok {
			info.RequestID = rid
		}
		if uid, ok := CurrentUserID(c); ok {
			info.UserID = uid
		}
		c.SetUserContext(context.WithValue(c.UserContext(), requestInfoKey{}, info))
		return c.Next()
	}
}

// StructuredLogger logs one line per request, at warn for 4xx and error for 5xx.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
		}

		ctx := c.UserContext()
		switch {
		case status >= fiber.StatusInternalServerError:
			Logger.ErrorContext(ctx, "request failed", fields...)
		case status >= fiber.StatusBadRequest:
			Logger.WarnContext(ctx, "request rejected", fields...)
		default:
			Logger.InfoContext(ctx, "request processed", fields...)
		}
		return err
	}
}
