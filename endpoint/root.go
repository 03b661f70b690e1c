package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

var errRouteNotFound = util.NewNotFoundError("route_not_found", "resource not found")

// Welcome greets on the root path.
func Welcome(appName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.CallMessage(c, fmt.Sprintf("Welcome to %s!", appName))
	}
}

// Healthz pings the database.
func Healthz(c *gin.Context) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallError(c, util.NewInternalError(errors.New("database not available in request context")))
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		util.CallError(c, util.NewInternalError(err))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		util.CallError(c, util.NewInternalError(fmt.Errorf("database ping: %w", err)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NoRoute renders unknown paths with the error envelope.
func NoRoute(c *gin.Context) {
	util.CallError(c, errRouteNotFound)
}
