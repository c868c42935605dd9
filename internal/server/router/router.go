package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/server/handlers"
)

// Handlers groups the HTTP adapters wired into the engine.
type Handlers struct {
	Ledger    *handlers.LedgerHandler
	Overview  *handlers.OverviewHandler
	Payments  *handlers.PaymentHandler
	Customers *handlers.CustomerHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/ledger", h.Ledger.List)
	r.POST("/ledger", h.Ledger.Create)
	r.DELETE("/ledger/:id", h.Ledger.Delete)

	r.GET("/overview", h.Overview.Get)
	r.POST("/overview/entries", h.Overview.CreateEntry)
	r.POST("/overview/export", h.Overview.Export)

	r.GET("/customers", h.Customers.List)
	r.GET("/customers/:shift", h.Customers.ByShift)

	// Order matters: the literal reminder-config route must beat the
	// :shift parameter route.
	r.GET("/payments/reminder-config", h.Payments.GetReminderConfig)
	r.POST("/payments/reminder-config", h.Payments.SetReminderConfig)
	r.GET("/payments/:shift", h.Payments.ListByShift)
	r.POST("/payments", h.Payments.Save)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
