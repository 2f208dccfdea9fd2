package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportStore guarda los PDFs renderizados hasta que vence su link.
type ReportStore interface {
	Save(ctx context.Context, reportID string, pdf []byte, ttl time.Duration) error
	Get(ctx context.Context, reportID string) ([]byte, error)
}

type storedReport struct {
	pdf       []byte
	expiresAt time.Time
}

type memoryReportStore struct {
	mu    sync.Mutex
	items map[string]storedReport
	now   func() time.Time
}

func NewMemoryReportStore() ReportStore {
	return &memoryReportStore{
		items: make(map[string]storedReport),
		now:   time.Now,
	}
}

func (s *memoryReportStore) Save(_ context.Context, reportID string, pdf []byte, ttl time.Duration) error {
	if strings.TrimSpace(reportID) == "" {
		return ErrReportNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.items[reportID] = storedReport{
		pdf:       append([]byte(nil), pdf...),
		expiresAt: s.now().UTC().Add(ttl),
	}
	return nil
}

func (s *memoryReportStore) Get(_ context.Context, reportID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[reportID]
	if !ok {
		return nil, ErrReportNotFound
	}
	if s.now().UTC().After(item.expiresAt) {
		delete(s.items, reportID)
		return nil, ErrReportNotFound
	}
	return append([]byte(nil), item.pdf...), nil
}

// purgeLocked borra los vencidos; se llama con el mutex tomado.
func (s *memoryReportStore) purgeLocked() {
	now := s.now().UTC()
	for id, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, id)
		}
	}
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisReportStore struct {
	client redisKVClient
	prefix string
}

func NewRedisReportStore(client *redis.Client) ReportStore {
	if client == nil {
		return nil
	}
	return &redisReportStore{
		client: client,
		prefix: "report:pdf:",
	}
}

func (s *redisReportStore) Save(ctx context.Context, reportID string, pdf []byte, ttl time.Duration) error {
	if strings.TrimSpace(reportID) == "" {
		return ErrReportNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+reportID, pdf, ttl).Err(); err != nil {
		return fmt.Errorf("store report %s: %w", reportID, err)
	}
	return nil
}

func (s *redisReportStore) Get(ctx context.Context, reportID string) ([]byte, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, ErrReportNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := s.client.Get(ctx, s.prefix+reportID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", reportID, err)
	}
	return b, nil
}
