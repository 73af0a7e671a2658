// Package http holds what the router needs from the composition root: the
// config, the readiness probe and the modules that mount routes.
package http

import (
	"context"

	"agency_backoffice/platform/config"
	"agency_backoffice/platform/httpkit"
	"agency_backoffice/platform/logger"

	"github.com/gin-gonic/gin"
)

type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/ready. A nil checker reports ready.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}

// Module mounts one back-office surface under /api/v1.
type Module interface {
	Name() string
	RegisterRoutes(rc *RouterContext)
}

// RouterContext is handed to each module while routes are registered.
type RouterContext struct {
	Engine *gin.Engine
	V1     *gin.RouterGroup
	// Protected requires a valid access token bound to an agency.
	Protected         *gin.RouterGroup
	Config            config.JWTConfig
	AuthMiddleware    gin.HandlerFunc
	AgencyRateLimiter *httpkit.IPRateLimiter
}
