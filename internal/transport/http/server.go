package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"testforge/internal/ai"
	appsvc "testforge/internal/app"
	"testforge/internal/bootstrap"
	"testforge/internal/cache"
	"testforge/internal/platform/rabbitmq"
	"testforge/internal/prompt"
	"testforge/internal/repository"
	"testforge/internal/transport/http/handler"
	"testforge/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	oracleClient := ai.NewClient(ai.Config{
		BaseURL:        app.Config.Oracle.BaseURL,
		APIKey:         app.Config.Oracle.APIKey,
		Model:          app.Config.Oracle.Model,
		EmbeddingModel: app.Config.Oracle.EmbeddingModel,
		Timeout:        time.Duration(app.Config.Oracle.TimeoutSeconds) * time.Second,
		MaxRetries:     app.Config.Oracle.MaxRetries,
	})

	userRepo := repository.NewUserRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	feedbackRepo := repository.NewFeedbackRepository(app.MySQL)
	promptRepo := repository.NewPromptRepository(app.MySQL)

	turnCache := cache.NewTurnCache(app.Redis, time.Duration(app.Config.Pipeline.TurnTTLSeconds)*time.Second)
	recordPublisher := rabbitmq.NewRecordPublisher(app.MQConn, app.Config.RabbitMQ.RecordPersistQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	retriever := appsvc.NewRetriever(docRepo, chunkRepo, oracleClient)
	docService := appsvc.NewDocumentService(docRepo, oracleClient)
	genService := appsvc.NewGenerationService(
		retriever,
		prompt.NewBuilder(prompt.DefaultTemplates()),
		oracleClient,
		feedbackRepo,
		promptRepo,
		recordPublisher,
		app.Config.Pipeline.ParseRetryBudget,
		app.Config.Pipeline.TopK,
		app.Config.Pipeline.FeedbackWindow,
	)
	qaService := appsvc.NewQAService(retriever, oracleClient, turnCache, app.Config.Pipeline.TopK, app.Config.Pipeline.MaxContextTurns)
	fbService := appsvc.NewFeedbackService(feedbackRepo, app.Config.Pipeline.FeedbackWindow)
	promptService := appsvc.NewPromptService(promptRepo)

	authHandler := handler.NewAuthHandler(authService)
	docHandler := handler.NewDocumentHandler(docService)
	genHandler := handler.NewGenerateHandler(genService)
	qaHandler := handler.NewQAHandler(qaService)
	fbHandler := handler.NewFeedbackHandler(fbService)
	promptHandler := handler.NewPromptHandler(promptService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	authed.POST("/documents/upload", docHandler.Upload)
	authed.GET("/documents/titles", docHandler.ListTitles)
	authed.DELETE("/documents", docHandler.Delete)

	authed.POST("/qa/sessions", qaHandler.CreateSession)
	authed.POST("/qa/ask", qaHandler.Ask)
	authed.GET("/qa/transcript", qaHandler.Transcript)
	authed.GET("/qa/export", qaHandler.Export)
	authed.DELETE("/qa/sessions/:id", qaHandler.EndSession)

	authed.POST("/generate", genHandler.Generate)
	authed.POST("/generate/regenerate", genHandler.Regenerate)

	authed.POST("/feedback", fbHandler.Store)
	authed.GET("/feedback", fbHandler.List)

	authed.POST("/prompts", promptHandler.Store)
	authed.GET("/prompts", promptHandler.List)

	return router
}
