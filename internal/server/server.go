package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallledger/arview/internal/clock"
	"github.com/smallledger/arview/internal/config"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	kpidomain "github.com/smallledger/arview/internal/kpi/domain"
	"github.com/smallledger/arview/internal/observability"
	obsmiddleware "github.com/smallledger/arview/internal/observability/logger"
	obsmetrics "github.com/smallledger/arview/internal/observability/metrics"
	"github.com/smallledger/arview/internal/qbo"
	riskdomain "github.com/smallledger/arview/internal/risk/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(corsMiddleware(cfg))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if origin := strings.TrimSpace(cfg.FrontendBaseURL); origin != "" {
		corsCfg.AllowOrigins = []string{origin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-Id")
	return cors.New(corsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock

	querySvc  invoicedomain.QueryService
	syncSvc   invoicedomain.SyncService
	createSvc invoicedomain.CreateService
	riskSvc   riskdomain.Service
	kpiSvc    kpidomain.Service

	oauth     *qbo.OAuth
	tokens    *qbo.TokenStore
	qboClient *qbo.Client
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock

	QuerySvc  invoicedomain.QueryService
	SyncSvc   invoicedomain.SyncService
	CreateSvc invoicedomain.CreateService
	RiskSvc   riskdomain.Service
	KpiSvc    kpidomain.Service

	OAuth     *qbo.OAuth
	Tokens    *qbo.TokenStore
	QBOClient *qbo.Client
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		db:        p.DB,
		log:       p.Log.Named("server"),
		clock:     p.Clock,
		querySvc:  p.QuerySvc,
		syncSvc:   p.SyncSvc,
		createSvc: p.CreateSvc,
		riskSvc:   p.RiskSvc,
		kpiSvc:    p.KpiSvc,
		oauth:     p.OAuth,
		tokens:    p.Tokens,
		qboClient: p.QBOClient,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	s.engine.GET("/connect", s.Connect)
	s.engine.GET("/oauth2redirect", s.OAuth2Redirect)
	s.engine.GET("/connected", s.Connected)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/admin/sync-qbo", s.SyncInvoices)

	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/aging", s.Aging)
	api.GET("/invoices/aging/overdue", s.OverdueAging)
	api.GET("/invoices/overdue", s.ListOverdue)
	api.GET("/summary", s.Summary)

	api.GET("/risk/customers", s.TopCustomers)
	api.GET("/risk/kpi/overdue-by-due", s.OverdueByDueDate)

	api.GET("/company", s.Company)
}
