package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
	"creator-growth/internal/service"
)

// AnalysisHandler expone el análisis y la descarga de reportes.
type AnalysisHandler struct {
	logger   *zap.Logger
	analysis *service.AnalysisService
	reports  *service.ReportService
}

func NewAnalysisHandler(logger *zap.Logger, analysis *service.AnalysisService, reports *service.ReportService) *AnalysisHandler {
	return &AnalysisHandler{
		logger:   logger,
		analysis: analysis,
		reports:  reports,
	}
}

type profileRequest struct {
	Name           string  `json:"name"`
	Niche          string  `json:"niche"`
	Platform       string  `json:"platform"`
	Followers      int64   `json:"followers" binding:"min=0"`
	EngagementRate float64 `json:"engagementRate" binding:"min=0,max=1"`
	MonthlyViews   int64   `json:"monthlyViews" binding:"min=0"`
	Content        string  `json:"content"`
	Goals          string  `json:"goals"`
	Challenges     string  `json:"challenges"`
}

func (p profileRequest) toDomain() domain.CreatorProfile {
	return domain.CreatorProfile{
		Name:           p.Name,
		Niche:          p.Niche,
		Platform:       p.Platform,
		Followers:      p.Followers,
		EngagementRate: p.EngagementRate,
		MonthlyViews:   p.MonthlyViews,
		Content:        p.Content,
		Goals:          p.Goals,
		Challenges:     p.Challenges,
	}
}

type quizRequest struct {
	UserID  string         `json:"userId" binding:"required"`
	Email   string         `json:"email" binding:"omitempty,email"`
	Profile profileRequest `json:"profile"`
}

// Analyze maneja POST /analyze.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.analysis.Analyze(c.Request.Context(), service.AnalyzeInput{
		UserID:    req.UserID,
		Email:     req.Email,
		ClientKey: c.ClientIP(),
		Profile:   req.Profile.toDomain(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProfile):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		case errors.Is(err, llm.ErrNoProviderConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": llm.ErrNoProviderConfigured.Error()})
		default:
			h.logger.Error("analyze failed", zap.Error(err), zap.String("user_id", req.UserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not analyze profile"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"result": result})
}

// GetReport maneja GET /reports/:id?token=...
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	reportID := c.Param("id")
	pdf, _, err := h.reports.Open(c.Request.Context(), reportID, c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportTokenInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired link"})
		case errors.Is(err, service.ErrReportNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		default:
			h.logger.Error("load report failed", zap.Error(err), zap.String("report_id", reportID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load report"})
		}
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "fame-report-"+reportID+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
