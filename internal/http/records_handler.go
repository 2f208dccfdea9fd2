package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"creator-growth/internal/domain"
	"creator-growth/internal/service"
)

// RecordsHandler expone quizzes, descargas, pagos y viabilidad de productos.
type RecordsHandler struct {
	logger  *zap.Logger
	records *service.RecordsService
}

func NewRecordsHandler(logger *zap.Logger, records *service.RecordsService) *RecordsHandler {
	return &RecordsHandler{logger: logger, records: records}
}

// PostQuiz maneja POST /quiz.
func (h *RecordsHandler) PostQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid quiz request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	quiz, err := h.records.RecordQuiz(c.Request.Context(), req.UserID, req.Email, req.Profile.toDomain())
	if err != nil {
		h.writeRecordError(c, "record quiz failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

// PostDownload maneja POST /downloads.
func (h *RecordsHandler) PostDownload(c *gin.Context) {
	var req struct {
		UserID    string `json:"userId" binding:"required"`
		ProductID string `json:"productId"`
		ReportID  string `json:"reportId"`
		Email     string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid download request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	event, err := h.records.RecordDownload(c.Request.Context(), domain.DownloadEvent{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		ReportID:  req.ReportID,
		Email:     req.Email,
	})
	if err != nil {
		h.writeRecordError(c, "record download failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"download": event})
}

// PostPayment maneja POST /payments.
func (h *RecordsHandler) PostPayment(c *gin.Context) {
	var req struct {
		UserID      string `json:"userId" binding:"required"`
		Email       string `json:"email" binding:"omitempty,email"`
		ProductID   string `json:"productId" binding:"required"`
		AmountCents int64  `json:"amountCents" binding:"min=0"`
		Currency    string `json:"currency"`
		Provider    string `json:"provider"`
		ExternalID  string `json:"externalId"`
		Status      string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid payment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	payment, err := h.records.RecordPayment(c.Request.Context(), domain.Payment{
		UserID:      req.UserID,
		Email:       req.Email,
		ProductID:   req.ProductID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Provider:    req.Provider,
		ExternalID:  req.ExternalID,
		Status:      req.Status,
	})
	if err != nil {
		h.writeRecordError(c, "record payment failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// ListProducts maneja GET /products.
func (h *RecordsHandler) ListProducts(c *gin.Context) {
	engagement, ok := engagementQuery(c)
	if !ok {
		return
	}
	products, err := h.records.Catalog(c.Request.Context(), engagement)
	if err != nil {
		h.logger.Error("score catalog failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not score products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ProductViability maneja GET /products/:id/viability.
func (h *RecordsHandler) ProductViability(c *gin.Context) {
	engagement, ok := engagementQuery(c)
	if !ok {
		return
	}
	viability, err := h.records.ProductViability(c.Request.Context(), c.Param("id"), engagement)
	if err != nil {
		h.logger.Error("score product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not score product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"viability": viability})
}

// ListQuizzes maneja GET /admin/quizzes y /admin/quizzes/:userId.
func (h *RecordsHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.records.Quizzes(c.Request.Context(), userFilter(c))
	if err != nil {
		h.logger.Error("list quizzes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list quizzes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// ListDownloads maneja GET /admin/downloads.
func (h *RecordsHandler) ListDownloads(c *gin.Context) {
	downloads, err := h.records.Downloads(c.Request.Context(), userFilter(c))
	if err != nil {
		h.logger.Error("list downloads failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list downloads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": downloads})
}

// ListPayments maneja GET /admin/payments.
func (h *RecordsHandler) ListPayments(c *gin.Context) {
	payments, err := h.records.Payments(c.Request.Context(), userFilter(c))
	if err != nil {
		h.logger.Error("list payments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *RecordsHandler) writeRecordError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidProfile), errors.Is(err, service.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown product"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save record"})
	}
}

// userFilter toma el userId del path o del query.
func userFilter(c *gin.Context) string {
	if id := strings.TrimSpace(c.Param("userId")); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("userId"))
}

func engagementQuery(c *gin.Context) (float64, bool) {
	raw := strings.TrimSpace(c.Query("engagement"))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "engagement must be a number between 0 and 1"})
		return 0, false
	}
	return v, true
}
