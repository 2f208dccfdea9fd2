package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	analysisH *AnalysisHandler,
	recordsH *RecordsHandler,
	adminKeyHash string,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", Health)

	r.POST("/analyze", analysisH.Analyze)
	r.GET("/reports/:id", analysisH.GetReport)

	r.POST("/quiz", recordsH.PostQuiz)
	r.POST("/downloads", recordsH.PostDownload)
	r.POST("/payments", recordsH.PostPayment)

	products := r.Group("/products")
	products.GET("", recordsH.ListProducts)
	products.GET("/:id/viability", recordsH.ProductViability)

	admin := r.Group("/admin", AdminKeyMiddleware(adminKeyHash))
	admin.GET("/quizzes", recordsH.ListQuizzes)
	admin.GET("/quizzes/:userId", recordsH.ListQuizzes)
	admin.GET("/downloads", recordsH.ListDownloads)
	admin.GET("/payments", recordsH.ListPayments)

	return r
}

// Health maneja GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
// Los handlers que sirven binarios lo pisan explícitamente.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
