// Package server wires the HTTP surface of the production entry flow.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spinmill/milltrack/internal/config"
	"github.com/spinmill/milltrack/internal/metrics"
	"github.com/spinmill/milltrack/internal/millconfig"
	"github.com/spinmill/milltrack/internal/order"
	orderdomain "github.com/spinmill/milltrack/internal/order/domain"
	"github.com/spinmill/milltrack/internal/production"
	proddomain "github.com/spinmill/milltrack/internal/production/domain"
	"github.com/spinmill/milltrack/internal/production/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	order.Module,
	production.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(metrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	Log      *zap.Logger
	Mill     *millconfig.Holder
	OrderSvc orderdomain.Service
	ProdSvc  proddomain.Service
	Sessions *session.Manager
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	mill     *millconfig.Holder
	ordersvc orderdomain.Service
	prodsvc  proddomain.Service
	sessions *session.Manager
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:   p.Gin,
		cfg:      p.Cfg,
		log:      p.Log.Named("http.server"),
		mill:     p.Mill,
		ordersvc: p.OrderSvc,
		prodsvc:  p.ProdSvc,
		sessions: p.Sessions,
	}

	s.registerAPIRoutes()
	return s
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")
	api.Use(OrgContext())

	api.GET("/orders-with-realisation", s.ListOrdersWithRealisation)
	api.POST("/orders", s.CreateOrder)

	api.GET("/mill-config", s.GetMillConfig)

	api.GET("/production", s.GetProductionByDate)
	api.GET("/production/days", s.ListProductionDays)

	sessions := api.Group("/production/sessions")
	sessions.POST("", s.OpenSession)
	sessions.GET("/:id", s.GetSession)
	sessions.PUT("/:id/orders", s.SetSessionOrders)
	sessions.PUT("/:id/sections/:section", s.UpdateSection)
	sessions.POST("/:id/sections/:section/save", s.SaveSection)
	sessions.POST("/:id/sections/:section/reset", s.ResetSection)
	sessions.POST("/:id/reset", s.ResetSession)
	sessions.POST("/:id/submit", s.SubmitSession)
}

// RunHTTP starts the listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, _ *Server, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
