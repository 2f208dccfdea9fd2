package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creator-growth/internal/domain"
	"creator-growth/internal/email"
	"creator-growth/internal/llm"
	"creator-growth/internal/repository"
)

// DocumentRenderer convierte el resultado en un PDF.
type DocumentRenderer interface {
	Render(result domain.AnalysisResult) ([]byte, error)
}

// AnalysisDeps agrupa los colaboradores del orquestador. Renderer, Reports, Quizzes,
// Email y Limiter son opcionales.
type AnalysisDeps struct {
	Providers    []llm.Provider
	Research     *ResearchService
	Personalizer *Personalizer
	Narrative    *NarrativeWriter
	Renderer     DocumentRenderer
	Reports      *ReportService
	Quizzes      repository.QuizRepository
	Email        email.Sender
	Limiter      RateLimiter
	Logger       *zap.Logger
	Now          func() time.Time
}

// AnalysisService orquesta el pipeline completo de /analyze.
type AnalysisService struct {
	deps       AnalysisDeps
	logger     *zap.Logger
	now        func() time.Time
	background sync.WaitGroup
}

func NewAnalysisService(deps AnalysisDeps) *AnalysisService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Personalizer == nil {
		deps.Personalizer = NewPersonalizer(nil, nil)
	}
	if deps.Research == nil {
		deps.Research = NewResearchService(deps.Providers, 0, logger)
	}
	if deps.Narrative == nil {
		deps.Narrative = NewNarrativeWriter(deps.Providers, 0, logger)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AnalysisService{deps: deps, logger: logger, now: now}
}

type AnalyzeInput struct {
	UserID    string
	Email     string
	ClientKey string // IP del cliente para el rate limit; vacío usa UserID
	Profile   domain.CreatorProfile
}

func (in AnalyzeInput) limiterKey(userID string) string {
	if key := strings.TrimSpace(in.ClientKey); key != "" {
		return key
	}
	return userID
}

// ValidateProfile rechaza métricas fuera de rango.
func ValidateProfile(p domain.CreatorProfile) error {
	switch {
	case p.Followers < 0:
		return fmt.Errorf("%w: followers must be >= 0", ErrInvalidProfile)
	case p.MonthlyViews < 0:
		return fmt.Errorf("%w: monthlyViews must be >= 0", ErrInvalidProfile)
	case math.IsNaN(p.EngagementRate) || p.EngagementRate < 0 || p.EngagementRate > 1:
		return fmt.Errorf("%w: engagementRate must be a fraction between 0 and 1", ErrInvalidProfile)
	}
	return nil
}

// Analyze corre el pipeline. Los únicos errores visibles son de entrada, rate limit
// o falta de proveedor; el resto se degrada y se loguea.
func (s *AnalysisService) Analyze(ctx context.Context, in AnalyzeInput) (domain.AnalysisResult, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return domain.AnalysisResult{}, fmt.Errorf("%w: userId is required", ErrInvalidProfile)
	}
	if err := ValidateProfile(in.Profile); err != nil {
		return domain.AnalysisResult{}, err
	}
	if s.deps.Limiter != nil && !s.deps.Limiter.Allow(in.limiterKey(userID)) {
		return domain.AnalysisResult{}, ErrRateLimited
	}
	if _, err := llm.SelectProvider(s.deps.Providers); err != nil {
		return domain.AnalysisResult{}, err
	}

	personalization, agentID, err := s.deps.Personalizer.Personalize(userID, in.Profile)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("personalize: %w", err)
	}

	profile := in.Profile
	market := s.deps.Research.Compile(ctx, profile.Niche, profile.Platform, profile.Followers)

	score := FameScore(profile, market, personalization.Fingerprint)
	analysis := domain.Analysis{
		FameScore:           score,
		Tier:                TierFor(score),
		MarketPosition:      MarketPosition(profile, market, score),
		Recommendations:     Recommendations(market, personalization),
		Factors:             personalization.Factors,
		EngagementBenchmark: EngagementBenchmark(profile),
	}
	analysis.Narrative = s.deps.Narrative.Write(ctx, profile, analysis)

	result := domain.AnalysisResult{
		AgentID:        agentID,
		UserID:         userID,
		Profile:        profile,
		Analysis:       analysis,
		MarketResearch: market,
		GrowthPlan:     GrowthPlan(profile, personalization.Factors, market),
		GeneratedAt:    s.now().UTC(),
	}

	s.attachReport(ctx, &result)
	s.persistQuiz(ctx, result, in.Email)
	s.sendReportEmail(in.Email, result)

	s.logger.Info("analysis completed",
		zap.String("user_id", userID),
		zap.String("agent_id", agentID),
		zap.Int("fame_score", score),
		zap.Bool("pdf", result.PDFURL != ""),
	)
	return result, nil
}

// attachReport renderiza y publica el PDF; si algo falla el resultado sale sin pdfUrl.
func (s *AnalysisService) attachReport(ctx context.Context, result *domain.AnalysisResult) {
	if s.deps.Renderer == nil || s.deps.Reports == nil {
		return
	}
	reportID := uuid.NewString()
	result.ReportID = reportID
	pdf, err := s.deps.Renderer.Render(*result)
	if err != nil {
		s.logger.Warn("report render failed", zap.Error(err), zap.String("user_id", result.UserID))
		result.ReportID = ""
		return
	}
	link, err := s.deps.Reports.Publish(ctx, reportID, result.UserID, pdf)
	if err != nil {
		s.logger.Warn("report publish failed", zap.Error(err), zap.String("report_id", reportID))
		result.ReportID = ""
		return
	}
	result.PDFURL = link
}

func (s *AnalysisService) persistQuiz(ctx context.Context, result domain.AnalysisResult, emailAddr string) {
	if s.deps.Quizzes == nil {
		return
	}
	quiz := domain.QuizSubmission{
		ID:        uuid.NewString(),
		UserID:    result.UserID,
		Email:     normalizeEmail(emailAddr),
		AgentID:   result.AgentID,
		Profile:   result.Profile,
		FameScore: result.Analysis.FameScore,
		Tier:      result.Analysis.Tier,
		CreatedAt: result.GeneratedAt,
	}
	if err := s.deps.Quizzes.Save(ctx, quiz); err != nil {
		s.logger.Warn("quiz persistence failed",
			zap.Error(fmt.Errorf("%w: %v", ErrPersistenceFailed, err)),
			zap.String("user_id", result.UserID),
		)
	}
}

// sendReportEmail corre en background; la respuesta no espera al SMTP.
func (s *AnalysisService) sendReportEmail(emailAddr string, result domain.AnalysisResult) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || result.PDFURL == "" || s.deps.Email == nil {
		return
	}
	summary := SummaryMarkdown(result)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := s.deps.Email.SendReportLink(ctx, emailAddr, result.Profile.Name, result.PDFURL, summary)
		if err != nil && !errors.Is(err, email.ErrSenderDisabled) {
			s.logger.Warn("send report email failed", zap.Error(err), zap.String("user_id", result.UserID))
		}
	}()
}

// Wait bloquea hasta que terminen los envíos en background.
func (s *AnalysisService) Wait() {
	s.background.Wait()
}
