package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/custodian/internal/pkg/auth"
	"github.com/polkiloo/custodian/internal/server/http/handlers"
	"github.com/polkiloo/custodian/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(webhook *handlers.WebhookHandler, verifier *pkgAuth.HMACVerifier, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/health", webhook.Health)

	hooks := engine.Group("/webhook")
	hooks.Use(middleware.VerifySignature(verifier))
	hooks.POST("/alchemy", webhook.AlchemyActivity)

	return engine
}
