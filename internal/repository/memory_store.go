package repository

import (
	"context"
	"sort"
	"sync"

	"creator-growth/internal/domain"
)

// memoryLog es una lista protegida por mutex, ordenada al leer por fecha descendente.
type memoryLog[T any] struct {
	mu      sync.Mutex
	items   []T
	userID  func(T) string
	created func(T) int64
}

func (l *memoryLog[T]) save(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
}

func (l *memoryLog[T]) filter(keep func(T) bool) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, 0, len(l.items))
	for _, it := range l.items {
		if keep == nil || keep(it) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return l.created(out[i]) > l.created(out[j]) })
	return out
}

func (l *memoryLog[T]) byUser(userID string) []T {
	return l.filter(func(it T) bool { return l.userID(it) == userID })
}

// MemoryQuizRepository es el backend por defecto cuando no hay base configurada.
type MemoryQuizRepository struct {
	log memoryLog[domain.QuizSubmission]
}

func NewMemoryQuizRepository() *MemoryQuizRepository {
	return &MemoryQuizRepository{log: memoryLog[domain.QuizSubmission]{
		userID:  func(q domain.QuizSubmission) string { return q.UserID },
		created: func(q domain.QuizSubmission) int64 { return q.CreatedAt.UnixNano() },
	}}
}

func (r *MemoryQuizRepository) Save(_ context.Context, quiz domain.QuizSubmission) error {
	r.log.save(quiz)
	return nil
}

func (r *MemoryQuizRepository) GetByUserID(_ context.Context, userID string) ([]domain.QuizSubmission, error) {
	return r.log.byUser(userID), nil
}

func (r *MemoryQuizRepository) ListAll(_ context.Context) ([]domain.QuizSubmission, error) {
	return r.log.filter(nil), nil
}

type MemoryDownloadRepository struct {
	log memoryLog[domain.DownloadEvent]
}

func NewMemoryDownloadRepository() *MemoryDownloadRepository {
	return &MemoryDownloadRepository{log: memoryLog[domain.DownloadEvent]{
		userID:  func(e domain.DownloadEvent) string { return e.UserID },
		created: func(e domain.DownloadEvent) int64 { return e.CreatedAt.UnixNano() },
	}}
}

func (r *MemoryDownloadRepository) Save(_ context.Context, event domain.DownloadEvent) error {
	r.log.save(event)
	return nil
}

func (r *MemoryDownloadRepository) GetByUserID(_ context.Context, userID string) ([]domain.DownloadEvent, error) {
	return r.log.byUser(userID), nil
}

func (r *MemoryDownloadRepository) ListAll(_ context.Context) ([]domain.DownloadEvent, error) {
	return r.log.filter(nil), nil
}

func (r *MemoryDownloadRepository) CountByProduct(_ context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, e := range r.log.filter(func(e domain.DownloadEvent) bool { return e.ProductID != "" }) {
		out[e.ProductID]++
	}
	return out, nil
}

type MemoryPaymentRepository struct {
	log memoryLog[domain.Payment]
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{log: memoryLog[domain.Payment]{
		userID:  func(p domain.Payment) string { return p.UserID },
		created: func(p domain.Payment) int64 { return p.CreatedAt.UnixNano() },
	}}
}

func (r *MemoryPaymentRepository) Save(_ context.Context, p domain.Payment) error {
	r.log.save(p)
	return nil
}

func (r *MemoryPaymentRepository) GetByUserID(_ context.Context, userID string) ([]domain.Payment, error) {
	return r.log.byUser(userID), nil
}

func (r *MemoryPaymentRepository) ListAll(_ context.Context) ([]domain.Payment, error) {
	return r.log.filter(nil), nil
}
