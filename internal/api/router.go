package api

import (
	"net/http"

	"miru/internal/booking"
	bookingHttp "miru/internal/booking/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	CORSOrigins []string
	RateLimit   rate.Limit
	RateBurst   int
}

// NewRouter assembles middleware and registers the booking and report routes under /api.
func NewRouter(service booking.Service, cfg RouterConfig, logger *zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(logger), Recovery(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", headerRequestID}
	corsCfg.ExposeHeaders = []string{"Content-Disposition", headerRequestID}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	apiGroup := r.Group("/api")
	apiGroup.Use(RateLimit(rate.NewLimiter(cfg.RateLimit, cfg.RateBurst)))
	{
		bookingHttp.RegisterRoutes(apiGroup, bookingHttp.NewHandler(service))

		reports := NewReportHandler(service)
		apiGroup.GET("/report", reports.PDF)
		apiGroup.GET("/export", reports.XLSX)
	}

	return r
}
