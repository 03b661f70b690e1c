package util

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/ariebrainware/medibook/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType names an audited security event.
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountDisabled    SecurityEventType = "ACCOUNT_DISABLED"
	EventPasswordChanged    SecurityEventType = "PASSWORD_CHANGED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"
)

// SecurityEvent is one audited event.
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    uint
	Email     string
	IP        string
	UserAgent string
	RequestID string
	Message   string
	Details   map[string]interface{}
}

var (
	securityMu sync.RWMutex
	securityDB *gorm.DB
)

// SetSecurityLoggerDB sets the database security events are persisted to. nil disables persistence.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	securityDB = db
	securityMu.Unlock()
}

func getSecurityDB() *gorm.DB {
	securityMu.RLock()
	defer securityMu.RUnlock()
	return securityDB
}

// sanitizeLogValue strips line breaks and truncates long values.
func sanitizeLogValue(value string) string {
	value = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(value)
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogSecurityEvent writes event to the security log and persists it when a database is set.
// Persistence is best effort; failures are logged and swallowed.
// Callers must not hold an open transaction on a single-connection database.
func LogSecurityEvent(event SecurityEvent) {
	log := Logger().With(zap.String("channel", "security"))
	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.Uint("user_id", event.UserID),
		zap.String("email", sanitizeLogValue(event.Email)),
		zap.String("ip", sanitizeLogValue(event.IP)),
		zap.String("user_agent", sanitizeLogValue(event.UserAgent)),
		zap.String("request_id", sanitizeLogValue(event.RequestID)),
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Int("details_count", len(event.Details)))
	}
	log.Info(sanitizeLogValue(event.Message), fields...)

	db := getSecurityDB()
	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    event.UserID,
		Email:     sanitizeLogValue(event.Email),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(FormatLocation(GetIPLocation(event.IP))),
		UserAgent: sanitizeLogValue(event.UserAgent),
		RequestID: sanitizeLogValue(event.RequestID),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Warn("failed to persist security event", zap.Error(err))
	}
}

// FormatLocation renders a city and country as "City/Country", or whichever part is known.
func FormatLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + "/" + country
	case country != "":
		return country
	default:
		return city
	}
}

func LogLoginSuccess(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

func LogLoginFailure(email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "Login failed: " + reason,
	})
}

func LogSignupSuccess(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSignupSuccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User registered",
	})
}

func LogLogout(userID uint, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

func LogAccountDisabled(userID uint, actorID uint, disabled bool) {
	msg := "Account disabled"
	if !disabled {
		msg = "Account re-enabled"
	}
	LogSecurityEvent(SecurityEvent{
		EventType: EventAccountDisabled,
		UserID:    userID,
		Message:   msg,
		Details:   map[string]interface{}{"actor_id": actorID, "disabled": disabled},
	})
}

func LogPasswordChanged(userID uint, actorID uint) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventPasswordChanged,
		UserID:    userID,
		Message:   "Password changed",
		Details:   map[string]interface{}{"actor_id": actorID},
	})
}

func LogUnauthorizedAccess(userID uint, ip, requestID, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		UserID:    userID,
		IP:        ip,
		RequestID: requestID,
		Message:   "Unauthorized access to " + resource + ": " + reason,
	})
}

func LogRateLimitExceeded(ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   "Rate limit exceeded for endpoint: " + endpoint,
	})
}
