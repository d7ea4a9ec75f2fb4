package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/featuredesk/backend/internal/config"
	"github.com/featuredesk/backend/internal/http/handlers"
	"github.com/featuredesk/backend/internal/http/middleware"
	"github.com/featuredesk/backend/internal/service"

	_ "github.com/featuredesk/backend/docs"
)

func Router(cfg config.Config, store service.Store, lifecycle *service.Lifecycle, predictor *service.Predictor, catalog *service.Catalog, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Actor(store))
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-Id", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Lifecycle: lifecycle,
		Predictor: predictor,
		Catalog:   catalog,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/users", h.UsersList)
		api.GET("/me", h.Me)
		api.GET("/metrics", h.MetricsGet)

		api.POST("/requests", h.RequestCreate)
		api.GET("/requests", h.RequestsList)
		api.GET("/requests/export", h.RequestsExport)
		api.GET("/requests/:id", h.RequestDetails)
		api.GET("/requests/:id/transitions", h.RequestTransitions)
		api.POST("/requests/:id/status", h.RequestStatusUpdate)
		api.POST("/requests/:id/notes", h.NoteCreate)
		api.PUT("/requests/:id/opportunity", h.OpportunityUpdate)
		api.GET("/requests/:id/prediction", h.RequestPrediction)
		api.GET("/requests/:id/suggestions", h.RequestSuggestions)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
