package http

import (
	"net/http"
	"time"

	"NotifyLink/internal/config"
	jwtMiddleware "NotifyLink/internal/middleware/jwt"
	notificationService "NotifyLink/internal/modules/notification/application/service"
	notificationPersistence "NotifyLink/internal/modules/notification/infrastructure/persistence"
	notificationHandler "NotifyLink/internal/modules/notification/interface/http"
	notificationWs "NotifyLink/internal/modules/notification/interface/websocket"
	"NotifyLink/pkg/ssl"
	"NotifyLink/pkg/util/myjwt"
	"NotifyLink/pkg/ws"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Server 组装好的 HTTP 引擎及需要在退出时释放的组件
type Server struct {
	Engine          *gin.Engine
	Hub             *ws.Hub
	NotificationSvc notificationService.NotificationService
}

func NewServer(conf *config.Config, db *gorm.DB) *Server {
	GE := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Internal-Key"}
	GE.Use(cors.New(corsConfig))
	if conf.MainConfig.EnableTLS {
		GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	wsHub := ws.NewHub()
	jwtManager := myjwt.NewManager(conf.JwtConfig, myjwt.NewRedisRevocationStore())

	notificationRepo := notificationPersistence.NewNotificationRepository(db)
	notificationSvc := notificationService.NewNotificationService(notificationRepo, notificationWs.NewGateway(wsHub))

	gw := conf.GatewayConfig
	wsH := notificationWs.NewWsHandler(wsHub, notificationSvc, jwtManager, ws.Options{
		SendBufferSize: gw.SendBufferSize,
		PongWait:       time.Duration(gw.PongWaitSeconds) * time.Second,
		ReadLimit:      gw.ReadLimitBytes,
		Rate:           rate.Limit(gw.MessagesPerSecond),
		Burst:          gw.MessageBurst,
	}, time.Duration(gw.HandshakeTimeoutSeconds)*time.Second)
	notificationH := notificationHandler.NewNotificationHandler(notificationSvc)
	sessionH := notificationHandler.NewSessionHandler(jwtManager, wsHub)

	GE.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"channels": wsHub.Len(),
		})
	})
	// 推送通道不走 Auth 中间件，凭证在握手参数里自行校验
	GE.GET(gw.Path, wsH.Connect)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth(jwtManager))
	authed.POST("/auth/logout", sessionH.Logout)
	authed.GET("/notifications", notificationH.List)
	authed.GET("/notifications/unread-count", notificationH.UnreadCount)
	authed.PATCH("/notifications/read-all", notificationH.MarkAllAsRead)
	authed.PATCH("/notifications/:id/read", notificationH.MarkAsRead)
	authed.DELETE("/notifications/:id", notificationH.Delete)

	internal := GE.Group("/internal")
	internal.Use(jwtMiddleware.InternalKey(conf.MainConfig.InternalKey))
	internal.POST("/notifications", notificationH.Create)

	return &Server{
		Engine:          GE,
		Hub:             wsHub,
		NotificationSvc: notificationSvc,
	}
}
