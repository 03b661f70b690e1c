package endpoint

import (
	"errors"
	"strconv"
	"time"

	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/policy"
	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

// TotalCountHeader carries the unpaginated row count of list responses.
const TotalCountHeader = "X-Total-Count"

var (
	errNoServices    = util.NewInternalError(errors.New("services not available in request context"))
	errNotAuthorized = util.NewUnauthenticatedError("missing_caller", "not authenticated")
)

func bindJSONOrRespond(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallError(c, util.BindError(err))
		return false
	}
	return true
}

func servicesOrRespond(c *gin.Context) (*service.Services, bool) {
	svc := middleware.GetServices(c)
	if svc == nil {
		util.CallError(c, errNoServices)
		return nil, false
	}
	return svc, true
}

// callerOrRespond returns the services and the authenticated caller of a protected route.
func callerOrRespond(c *gin.Context) (*service.Services, policy.Caller, bool) {
	svc, ok := servicesOrRespond(c)
	if !ok {
		return nil, policy.Caller{}, false
	}
	caller, ok := middleware.GetCaller(c)
	if !ok {
		util.CallError(c, errNotAuthorized)
		return nil, policy.Caller{}, false
	}
	return svc, caller, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.CallError(c, util.NewValidationError("invalid_id", name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// parseUintQuery reads an optional positive integer query parameter; absent yields 0.
func parseUintQuery(c *gin.Context, key string) (uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		util.CallError(c, util.NewValidationError("invalid_query", key+" must be a positive integer"))
		return 0, false
	}
	return uint(v), true
}

// parseTimeQuery reads an optional RFC 3339 timestamp query parameter.
func parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		util.CallError(c, util.NewValidationError("invalid_query", key+" must be an RFC 3339 timestamp"))
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

func parseListOptions(c *gin.Context) (repository.ListOptions, bool) {
	var opts repository.ListOptions
	for key, dst := range map[string]*int{"limit": &opts.Limit, "offset": &opts.Offset} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			util.CallError(c, util.NewValidationError("invalid_query", key+" must be a non-negative integer"))
			return repository.ListOptions{}, false
		}
		*dst = v
	}
	return opts, true
}

func respondList(c *gin.Context, items interface{}, total int64) {
	c.Header(TotalCountHeader, strconv.FormatInt(total, 10))
	util.CallSuccessOK(c, items)
}

type clientInfo struct {
	IP    string
	Agent string
}

func clientInfoOf(c *gin.Context) clientInfo {
	return clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
}
