package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"coursegen/internal/bootstrap"
	"coursegen/internal/transport/http/handler"
	"coursegen/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Log.Named("http")), gin.Recovery())
	if len(app.Config.App.CORSOrigins) > 0 {
		router.Use(middleware.CORS(app.Config.App.CORSOrigins))
	}

	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, dependencyChecks(app))
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(app.Auth)
	courseHandler := handler.NewCourseHandler(app.Courses, app.Config.Upload.MaxBytes)
	requireAuth := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	courseGroup := v1.Group("/courses")
	courseGroup.Use(requireAuth)
	courseGroup.POST("/upload", courseHandler.Upload)
	courseGroup.GET("", courseHandler.List)
	courseGroup.GET("/:id", courseHandler.Get)
	courseGroup.GET("/:id/events", courseHandler.Events)

	return router
}

func dependencyChecks(app *bootstrap.App) map[string]handler.DependencyCheck {
	return map[string]handler.DependencyCheck{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := app.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		},
		"rabbitmq": func(ctx context.Context) error {
			if app.MQConn == nil || app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		},
	}
}
