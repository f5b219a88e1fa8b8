// internal/api/router.go
package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scenario-builder/internal/config"
	"scenario-builder/internal/di"
	"scenario-builder/internal/services"
	"scenario-builder/internal/storage"
)

// SetupRouter wires the HTTP surface. Services come from the DI container;
// this function creates no service instances of its own.
func SetupRouter(cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	container := di.GetContainer()

	controller, ok := container.Get("controller").(*services.StageController)
	if !ok {
		return nil, fmt.Errorf("stage controller not initialized")
	}

	gateway, ok := container.Get("gateway").(*services.GenerationService)
	if !ok {
		return nil, fmt.Errorf("generation gateway not initialized")
	}

	store, ok := container.Get("store").(*storage.ProjectStore)
	if !ok {
		return nil, fmt.Errorf("project store not initialized")
	}

	handler := NewHandler(controller, gateway, store, logger)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handler.Health)

	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		api.GET("/projects", handler.ListProjects)
		api.GET("/projects/:course/modules", handler.ListModules)

		api.POST("/session", handler.NewSession)

		session := api.Group("/session/:id")
		{
			session.GET("", handler.GetSession)
			session.POST("/back", handler.Back)

			session.POST("/setup", handler.SubmitSetup)
			session.POST("/context", handler.UpdateContext)
			session.POST("/review/confirm", handler.ConfirmReview)
			session.POST("/review/start-over", handler.StartOver)

			scenarios := session.Group("/scenarios")
			{
				scenarios.POST("/generate", GenerationRateLimit(), handler.GenerateScenarios)
				scenarios.POST("/select", handler.SelectScenario)
				scenarios.POST("/edit", handler.EditScenario)
				scenarios.POST("/refine", GenerationRateLimit(), handler.RefineScenario)
				scenarios.POST("/use-existing", handler.UseExistingScenario)
				scenarios.POST("/save", handler.SaveScenario)
			}

			metadata := session.Group("/metadata")
			{
				metadata.POST("/generate", GenerationRateLimit(), handler.GenerateMetadata)
				metadata.POST("/update", handler.UpdateMetadata)
				metadata.POST("/use-existing", handler.UseExistingMetadata)
				metadata.POST("/save", handler.SaveMetadata)
			}

			screens := session.Group("/screens")
			{
				screens.POST("/generate", GenerationRateLimit(), handler.GenerateScreens)
				screens.POST("/update", handler.UpdateScreens)
				screens.POST("/save", handler.SaveScreens)
			}

			images := session.Group("/images")
			{
				images.POST("/generate", GenerationRateLimit(), handler.GenerateImage)
				images.POST("/regenerate", GenerationRateLimit(), handler.RegenerateImage)
				images.POST("/accept", handler.AcceptImage)
			}

			session.POST("/preview/enter", handler.EnterPreview)
			session.GET("/preview/:index", handler.PreviewFrame)
		}
	}

	return r, nil
}
