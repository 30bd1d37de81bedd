package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/drawboard-server/internal/config"
	"github.com/vovakirdan/drawboard-server/internal/core"
)

// NewServer builds the HTTP server: WebSocket endpoint, room API and the
// optional static client.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	rooms := NewRoomHandlers(hub, logger)
	api := router.Group("/api")
	api.Use(CORSMiddleware())
	{
		api.POST("/rooms", rooms.CreateRoom)
		api.GET("/rooms/:id", rooms.GetRoom)
		api.GET("/stats", rooms.Stats)
		api.GET("/sessions", rooms.ListSessions)
		// Preflight requests are answered by CORSMiddleware.
		api.OPTIONS("/*path", func(*gin.Context) {})
	}

	if cfg.StaticDir != "" {
		router.NoRoute(gin.WrapH(stdhttp.FileServer(stdhttp.Dir(cfg.StaticDir))))
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
