// Package api wires the HTTP surface: route registration, middleware
// ordering and handler construction.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Stattrackrr/stattrackr-sub000/internal/api/handlers"
	"github.com/Stattrackrr/stattrackr-sub000/internal/api/middleware"
	"github.com/Stattrackrr/stattrackr-sub000/internal/services"
	"github.com/Stattrackrr/stattrackr-sub000/pkg/config"
)

// Services bundles the dependencies the router needs. RateLimiter is owned
// by the caller, which is responsible for stopping it on shutdown.
type Services struct {
	DB          *gorm.DB
	Stats       *services.StatsService
	Odds        *services.OddsService
	Refresher   *services.Refresher
	RateLimiter *middleware.RateLimiter
	Logger      *logrus.Logger
}

// NewRouter builds the gin engine with the full middleware chain and every
// route mounted under /api/v1.
func NewRouter(cfg *config.Config, deps Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(float64(cfg.ClientRateLimit), cfg.ClientRateBurst)
	}
	auth := middleware.NewSupabaseAuthMiddleware(cfg.SupabaseURL)

	healthHandler := handlers.NewHealthHandler("1.0.0")
	router.GET("/health", healthHandler.Health)

	playerHandler := handlers.NewPlayerHandler(deps.Stats, deps.Refresher, deps.Logger)
	oddsHandler := handlers.NewOddsHandler(deps.Odds, deps.Logger)
	defenseHandler := handlers.NewDefenseHandler(deps.Stats, deps.Logger)
	selectionHandler := handlers.NewSelectionHandler(deps.DB, deps.Logger)

	v1 := router.Group("/api/v1")
	v1.Use(limiter.Middleware())
	{
		v1.GET("/players/search", playerHandler.SearchPlayers)
		v1.GET("/players/:id/gamelog", playerHandler.GetGameLog)
		v1.GET("/players/:id/chart", playerHandler.GetChart)
		v1.POST("/players/:id/refresh", auth.AuthRequired(), playerHandler.RefreshPlayer)
		v1.GET("/refresh/status", playerHandler.RefreshStatus)

		v1.GET("/odds/:playerId", oddsHandler.GetBoard)
		v1.GET("/odds/:playerId/edge", oddsHandler.GetEdge)

		v1.GET("/nba/dvp", defenseHandler.GetBoard)

		// Selection state: authenticated users keyed by user ID, anonymous
		// clients by X-Client-Id.
		selection := v1.Group("/selection")
		selection.Use(auth.AuthOptional())
		{
			selection.GET("", selectionHandler.GetSelection)
			selection.PUT("", selectionHandler.PutSelection)
		}
	}

	return router
}
