package middleware

import (
	"errors"
	"strings"

	"github.com/ariebrainware/medibook/policy"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

const (
	callerKey = "caller"
	claimsKey = "claims"
)

var (
	errMissingToken = util.NewUnauthenticatedError("missing_token", "not authenticated")
	errNoServices   = util.NewInternalError(errors.New("services middleware not installed"))
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the bearer token into a caller. Missing or invalid tokens get 401;
// disabled accounts get 403 before any handler runs.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := GetServices(c)
		if svc == nil {
			util.CallError(c, errNoServices)
			return
		}
		token := bearerToken(c)
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			util.CallError(c, errMissingToken)
			return
		}

		caller, claims, err := svc.Identity.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			if util.IsKind(err, util.KindUnauthenticated) {
				c.Header("WWW-Authenticate", "Bearer")
			}
			util.CallError(c, err)
			return
		}

		c.Set(callerKey, caller)
		c.Set(claimsKey, claims)
		c.Set(util.CallerIDKey, caller.ID)

		if caller.Disabled {
			util.CallError(c, service.ErrAccountDisabled)
			return
		}
		c.Next()
	}
}

// GetCaller returns the caller set by Authenticate.
func GetCaller(c *gin.Context) (policy.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return policy.Caller{}, false
	}
	caller, ok := v.(policy.Caller)
	return caller, ok
}

// GetClaims returns the token claims set by Authenticate.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok
}
