package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"creator-growth/internal/domain"
	"creator-growth/internal/refdata"
	"creator-growth/internal/repository"
)

// RecordsService cubre el registro de quizzes, descargas y pagos, y la viabilidad de productos.
type RecordsService struct {
	repos  repository.Set
	logger *zap.Logger
	now    func() time.Time
}

func NewRecordsService(repos repository.Set, logger *zap.Logger) *RecordsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsService{repos: repos, logger: logger, now: time.Now}
}

// RecordQuiz guarda un quiz sin análisis (captura de lead).
func (s *RecordsService) RecordQuiz(ctx context.Context, userID, email string, profile domain.CreatorProfile) (domain.QuizSubmission, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.QuizSubmission{}, fmt.Errorf("%w: userId is required", ErrInvalidProfile)
	}
	if err := ValidateProfile(profile); err != nil {
		return domain.QuizSubmission{}, err
	}
	quiz := domain.QuizSubmission{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     normalizeEmail(email),
		Profile:   profile,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repos.Quizzes.Save(ctx, quiz); err != nil {
		return domain.QuizSubmission{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return quiz, nil
}

// RecordDownload guarda la descarga de un producto o reporte.
func (s *RecordsService) RecordDownload(ctx context.Context, event domain.DownloadEvent) (domain.DownloadEvent, error) {
	event.UserID = strings.TrimSpace(event.UserID)
	event.ProductID = strings.ToLower(strings.TrimSpace(event.ProductID))
	if event.UserID == "" || (event.ProductID == "" && event.ReportID == "") {
		return domain.DownloadEvent{}, ErrInvalidRecord
	}
	if event.ProductID != "" {
		if _, ok := refdata.LookupProduct(event.ProductID); !ok {
			return domain.DownloadEvent{}, ErrUnknownProduct
		}
	}
	event.ID = uuid.NewString()
	event.Email = normalizeEmail(event.Email)
	event.CreatedAt = s.now().UTC()
	if err := s.repos.Downloads.Save(ctx, event); err != nil {
		return domain.DownloadEvent{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return event, nil
}

// RecordPayment guarda un pago; el estado por defecto es pending.
func (s *RecordsService) RecordPayment(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	p.UserID = strings.TrimSpace(p.UserID)
	p.ProductID = strings.ToLower(strings.TrimSpace(p.ProductID))
	if p.UserID == "" || p.ProductID == "" || p.AmountCents < 0 {
		return domain.Payment{}, ErrInvalidRecord
	}
	if _, ok := refdata.LookupProduct(p.ProductID); !ok {
		return domain.Payment{}, ErrUnknownProduct
	}
	switch p.Status {
	case "":
		p.Status = domain.PaymentStatusPending
	case domain.PaymentStatusPending, domain.PaymentStatusSucceeded, domain.PaymentStatusFailed, domain.PaymentStatusRefunded:
	default:
		return domain.Payment{}, ErrInvalidRecord
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.Currency = strings.ToUpper(p.Currency)
	p.ID = uuid.NewString()
	p.Email = normalizeEmail(p.Email)
	p.CreatedAt = s.now().UTC()
	if err := s.repos.Payments.Save(ctx, p); err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return p, nil
}

func (s *RecordsService) Quizzes(ctx context.Context, userID string) ([]domain.QuizSubmission, error) {
	if strings.TrimSpace(userID) == "" {
		return s.repos.Quizzes.ListAll(ctx)
	}
	return s.repos.Quizzes.GetByUserID(ctx, userID)
}

func (s *RecordsService) Downloads(ctx context.Context, userID string) ([]domain.DownloadEvent, error) {
	if strings.TrimSpace(userID) == "" {
		return s.repos.Downloads.ListAll(ctx)
	}
	return s.repos.Downloads.GetByUserID(ctx, userID)
}

func (s *RecordsService) Payments(ctx context.Context, userID string) ([]domain.Payment, error) {
	if strings.TrimSpace(userID) == "" {
		return s.repos.Payments.ListAll(ctx)
	}
	return s.repos.Payments.GetByUserID(ctx, userID)
}

// ProductViability puntúa un producto con sus descargas registradas.
func (s *RecordsService) ProductViability(ctx context.Context, productID string, engagement float64) (domain.ProductViability, error) {
	counts, err := s.downloadCounts(ctx)
	if err != nil {
		return domain.ProductViability{}, err
	}
	id := strings.ToLower(strings.TrimSpace(productID))
	return ScoreProduct(id, counts[id], engagement), nil
}

// Catalog puntúa todo el catálogo.
func (s *RecordsService) Catalog(ctx context.Context, engagement float64) ([]domain.ProductViability, error) {
	counts, err := s.downloadCounts(ctx)
	if err != nil {
		return nil, err
	}
	return ScoreCatalog(counts, engagement), nil
}

func (s *RecordsService) downloadCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repos.Downloads.CountByProduct(ctx)
	if err != nil {
		s.logger.Warn("count downloads failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return counts, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
