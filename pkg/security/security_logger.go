package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type EventType string

const (
	EventLoginFailed        EventType = "login_failed"
	EventLoginSuccess       EventType = "login_success"
	EventRegistered         EventType = "user_registered"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventAccountDeleted     EventType = "account_deleted"
)

// level maps an event to its severity. Unknown events are warnings.
func (e EventType) level() zapcore.Level {
	switch e {
	case EventLoginSuccess, EventRegistered, EventAccountDeleted:
		return zapcore.InfoLevel
	case EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// SecurityLogger writes auth and abuse events to a dedicated zap logger so
// they can be shipped apart from request logs. Subjects are never logged raw.
type SecurityLogger struct {
	zl *zap.Logger
}

// NewSecurityLogger wraps zl with service and env fields. Tests pass an observer core.
func NewSecurityLogger(zl *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zl: zl.With(zap.String("service", serviceName), zap.String("env", environment)),
	}
}

// InitSecurityLogger builds the production JSON logger on stdout.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "message"
	cfg.OutputPaths = []string{"stdout"}

	zl, err := cfg.Build(zap.AddCaller())
	if err != nil {
		zl = zap.NewNop()
	}
	return NewSecurityLogger(zl, serviceName, environment)
}

func (sl *SecurityLogger) emit(event EventType, fields ...zap.Field) {
	if ce := sl.zl.Check(event.level(), string(event)); ce != nil {
		ce.Write(append(fields, zap.String("event", string(event)))...)
	}
}

func (sl *SecurityLogger) LogLoginFailed(_ context.Context, email, reason string) {
	sl.emit(EventLoginFailed,
		zap.String("subject_type", "email"),
		zap.String("subject_value", MaskEmail(email)),
		zap.String("reason", reason),
	)
}

// LogUserEvent records an event about a known account by hashed id.
func (sl *SecurityLogger) LogUserEvent(_ context.Context, event EventType, userID string) {
	sl.emit(event,
		zap.String("subject_type", "user_id"),
		zap.String("subject_value", HashValue(userID)),
	)
}

func (sl *SecurityLogger) LogRateLimitTriggered(_ context.Context, ip, userAgent, requestID, endpoint string) {
	sl.emit(EventRateLimitTriggered,
		zap.String("subject_type", "ip"),
		zap.String("subject_value", ip),
		zap.String("user_agent", userAgent),
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
	)
}

func (sl *SecurityLogger) LogUnauthorized(_ context.Context, ip, requestID, endpoint, reason string) {
	sl.emit(EventUnauthorizedAccess,
		zap.String("ip", ip),
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
		zap.String("reason", reason),
	)
}

func (sl *SecurityLogger) Sync() error {
	return sl.zl.Sync()
}

// MaskEmail keeps the first letter and the domain: "j***@example.com".
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	switch {
	case len(email) < 3:
		return "***"
	case at <= 1:
		return "***" + email[1:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue returns the first 8 bytes of SHA-256 in hex.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}
