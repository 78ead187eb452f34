package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app.MySQL)
	router.GET("/health", healthHandler.Check)
	router.GET("/health/db", healthHandler.CheckDB)

	sessionRepo := repository.NewSessionRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	turnRepo := repository.NewTurnRepository(app.MySQL)

	sessionTTL := time.Duration(app.Config.Session.TTLHours) * time.Hour
	sessionService := appsvc.NewSessionService(sessionRepo, sessionTTL)
	jobService := appsvc.NewJobService(repository.NewJobRepository(app.MySQL))

	publisher := rabbitmqClient.NewIngestPublisher(app.MQConn, app.Config.RabbitMQ.IngestQueue)
	docService := appsvc.NewDocumentService(docRepo, jobService, publisher, app.Config.Storage.UploadDir)

	chatService := appsvc.NewChatService(
		docRepo,
		turnRepo,
		app.HistoryCache,
		app.LLM,
		app.LLM,
		app.Index,
		app.Config.RAG.TopK,
		app.Config.RAG.HistoryTurns,
	)

	docHandler := handler.NewDocumentHandler(docService)
	jobHandler := handler.NewJobHandler(jobService)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Session(sessionService, app.Config.Session.CookieName, int(sessionTTL.Seconds())))
	v1.POST("/documents/upload", docHandler.Upload)
	v1.GET("/documents", docHandler.List)
	v1.GET("/jobs/status/:taskID", jobHandler.Status)
	v1.POST("/documents/:id/chat", chatHandler.Chat)

	return router
}
