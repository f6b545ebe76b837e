package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vanmoi/vanmoi/internal/api/http/handler"
	"github.com/vanmoi/vanmoi/internal/api/http/middleware"
	"github.com/vanmoi/vanmoi/internal/auth"
	"github.com/vanmoi/vanmoi/internal/liveness"
	"github.com/vanmoi/vanmoi/internal/notify"
	"github.com/vanmoi/vanmoi/internal/store"
	"github.com/vanmoi/vanmoi/internal/ws"
)

type Services struct {
	Store    *store.Store
	Auth     *auth.Service
	Tracker  *liveness.Tracker
	Hub      *ws.Hub
	Notifier *notify.Dispatcher

	SessionTTL time.Duration
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler()
	engine.GET("/health", healthHandler.Check)

	authHandler := handler.NewAuthHandler(srvs.Auth, srvs.SessionTTL)
	agentHandler := handler.NewAgentHandler(srvs.Store, srvs.Tracker, srvs.Hub)
	publicHandler := handler.NewPublicHandler(srvs.Store)
	adminHandler := handler.NewAdminHandler(srvs.Store, srvs.Auth, srvs.Notifier)

	api := engine.Group("/api")
	api.Use(middleware.OptionalAuth(srvs.Auth))

	api.POST("/login", authHandler.Login)
	api.GET("/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me)

	api.GET("/clients", publicHandler.Clients)
	api.GET("/nodes", publicHandler.Nodes)
	api.GET("/recent/:uuid", publicHandler.RecentRecords)
	api.GET("/ping", publicHandler.PingTasks)
	api.GET("/ping/:id/records", publicHandler.PingRecords)

	agent := api.Group("/agent")
	agent.POST("/register", agentHandler.Register)
	agent.POST("/info", agentHandler.UploadBasicInfo)
	agent.POST("/report", agentHandler.UploadReport)
	agent.GET("/ws", agentHandler.Stream)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(srvs.Auth))

	admin.GET("/clients", adminHandler.ListClients)
	admin.POST("/clients", adminHandler.AddClient)
	admin.GET("/clients/:id", adminHandler.GetClient)
	admin.PUT("/clients/:id", adminHandler.EditClient)
	admin.DELETE("/clients/:id", adminHandler.DeleteClient)
	admin.GET("/clients/:id/token", adminHandler.GetClientToken)

	admin.GET("/settings", adminHandler.GetSettings)
	admin.PUT("/settings", adminHandler.UpdateSettings)

	admin.GET("/notifications", adminHandler.ListNotifications)
	admin.POST("/notifications", adminHandler.AddNotification)
	admin.DELETE("/notifications/:id", adminHandler.DeleteNotification)
	admin.POST("/notifications/test", adminHandler.TestNotification)

	admin.GET("/ping", adminHandler.ListPingTasks)
	admin.POST("/ping", adminHandler.AddPingTask)
	admin.DELETE("/ping/:id", adminHandler.DeletePingTask)

	admin.POST("/password", adminHandler.ChangePassword)
	admin.GET("/sessions", adminHandler.ListSessions)
	admin.DELETE("/sessions/:id", adminHandler.DeleteSession)
}
