package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creator-growth/internal/domain"
	"creator-growth/internal/repository"
)

// ReportService guarda PDFs, firma los links y los sirve registrando la descarga.
type ReportService struct {
	store     ReportStore
	tokens    *ReportTokenService
	downloads repository.DownloadRepository
	baseURL   string
	logger    *zap.Logger
}

func NewReportService(store ReportStore, tokens *ReportTokenService, downloads repository.DownloadRepository, baseURL string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		store:     store,
		tokens:    tokens,
		downloads: downloads,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Publish guarda el PDF y devuelve el link firmado.
func (s *ReportService) Publish(ctx context.Context, reportID, userID string, pdf []byte) (string, error) {
	if err := s.store.Save(ctx, reportID, pdf, s.tokens.TTL()); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	token, _, err := s.tokens.Issue(reportID, userID)
	if err != nil {
		return "", err
	}
	return DownloadURL(s.baseURL, reportID, token), nil
}

// Open valida el token contra el report id y devuelve los bytes del PDF.
// La descarga se registra pero un error al guardarla no corta la respuesta.
func (s *ReportService) Open(ctx context.Context, reportID, token string) ([]byte, ReportClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ReportClaims{}, err
	}
	if claims.Subject != reportID {
		return nil, ReportClaims{}, ErrReportTokenInvalid
	}
	pdf, err := s.store.Get(ctx, reportID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return nil, ReportClaims{}, ErrReportNotFound
		}
		return nil, ReportClaims{}, err
	}

	if s.downloads != nil {
		event := domain.DownloadEvent{
			ID:        uuid.NewString(),
			UserID:    claims.UserID,
			ReportID:  reportID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.downloads.Save(ctx, event); err != nil {
			s.logger.Warn("record report download failed",
				zap.Error(fmt.Errorf("%w: %v", ErrPersistenceFailed, err)),
				zap.String("report_id", reportID),
			)
		}
	}
	return pdf, claims, nil
}
