package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrorResponse wraps ErrorBody as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MessageResponse is used by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// CallSuccessOK writes data with status 200.
func CallSuccessOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// CallCreated writes data with status 201.
func CallCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// CallMessage writes {"message": msg} with status 200.
func CallMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

// CallError renders err as the error envelope and aborts the handler chain.
// Internal errors are logged with their cause and rendered with a generic message;
// permission errors are recorded as UNAUTHORIZED_ACCESS security events.
func CallError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	if appErr.Kind == KindInternal {
		Logger().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(appErr.Err),
		)
	}
	if appErr.Kind == KindForbidden {
		LogUnauthorizedAccess(c.GetUint(CallerIDKey), c.ClientIP(), c.GetString(RequestIDKey), c.Request.Method+" "+c.Request.URL.Path, appErr.Message)
	}
	status := appErr.Kind.Status()
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{
		Code:    status,
		Message: appErr.Message,
		Type:    appErr.Kind.Type(),
	}})
}

// Gin context keys shared by middleware and handlers.
const (
	RequestIDKey = "request_id"
	CallerIDKey  = "caller_id"
)

// Contains reports whether d is present in dl.
func Contains(d string, dl []string) bool {
	for _, v := range dl {
		if v == d {
			return true
		}
	}
	return false
}

// NormalizeName trims surrounding whitespace and collapses internal runs of spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// SplitFullName splits a display name on the first space into first and last name.
func SplitFullName(name string) (first, last string) {
	name = NormalizeName(name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}
