package api

import (
	"github.com/gin-gonic/gin"

	"github.com/statside/sportschat/config"
	"github.com/statside/sportschat/internal/api/handler"
	"github.com/statside/sportschat/internal/api/middleware"
)

type Router struct {
	scrapeHandler    *handler.ScrapeHandler
	chatHandler      *handler.ChatHandler
	statsHandler     *handler.StatsHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	scrapeHandler *handler.ScrapeHandler,
	chatHandler *handler.ChatHandler,
	statsHandler *handler.StatsHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		scrapeHandler:    scrapeHandler,
		chatHandler:      chatHandler,
		statsHandler:     statsHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket job progress stream
		api.GET("/ws", r.websocketHandler.Handle)

		scrape := api.Group("/scrape")
		{
			scrape.POST("/run", r.scrapeHandler.Run)
			scrape.POST("/ncaa/basketball", r.scrapeHandler.RunBasketball)
			scrape.POST("/ncaa/football", r.scrapeHandler.RunFootball)
			scrape.GET("/jobs/:id", r.scrapeHandler.Status)
			scrape.POST("/jobs/:id/cancel", r.scrapeHandler.Cancel)
		}

		chat := api.Group("/chat")
		{
			chat.POST("", r.chatHandler.Send)
			chat.GET("/sessions/:id", r.chatHandler.History)
		}

		stats := api.Group("/stats")
		{
			stats.GET("/analyze", r.statsHandler.Analyze)
			stats.GET("/trends", r.statsHandler.Trends)
			stats.GET("/visualize", r.statsHandler.Visualize)
		}
	}

	return engine
}
