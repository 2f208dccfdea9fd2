package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryReportStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryReportStore()

	pdf := []byte("%PDF-1.3 fake")
	if err := store.Save(ctx, "rep-1", pdf, time.Hour); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	pdf[0] = 'X'

	got, err := store.Get(ctx, "rep-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "%PDF-1.3 fake" {
		t.Fatalf("expected stored copy, got %q", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestMemoryReportStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryReportStore().(*memoryReportStore)
	current := time.Now()
	store.now = func() time.Time { return current }

	if err := store.Save(ctx, "rep-1", []byte("pdf"), time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	current = current.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "rep-1"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected expired report to be gone, got %v", err)
	}
}

type mockRedisKVClient struct {
	lastSetKey string
	lastSetTTL time.Duration
	getVal     string
	getErr     error
	setErr     error
	lastGetKey string
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, _ interface{}, ttl time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = ttl
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
	}
	return cmd
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.lastGetKey = key
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	cmd.SetVal(m.getVal)
	return cmd
}

func TestRedisReportStore(t *testing.T) {
	ctx := context.Background()
	mock := &mockRedisKVClient{getVal: "pdf-bytes"}
	store := &redisReportStore{client: mock, prefix: "report:pdf:"}

	if err := store.Save(ctx, "rep-1", []byte("pdf-bytes"), 3*time.Hour); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if mock.lastSetKey != "report:pdf:rep-1" || mock.lastSetTTL != 3*time.Hour {
		t.Fatalf("unexpected set call key=%s ttl=%v", mock.lastSetKey, mock.lastSetTTL)
	}
	got, err := store.Get(ctx, "rep-1")
	if err != nil || string(got) != "pdf-bytes" {
		t.Fatalf("unexpected get result %q, %v", got, err)
	}
}

func TestRedisReportStoreErrors(t *testing.T) {
	ctx := context.Background()

	store := &redisReportStore{client: &mockRedisKVClient{getErr: redis.Nil}, prefix: "report:pdf:"}
	if _, err := store.Get(ctx, "rep-1"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound on redis.Nil, got %v", err)
	}

	boom := errors.New("redis down")
	store = &redisReportStore{client: &mockRedisKVClient{getErr: boom, setErr: boom}, prefix: "report:pdf:"}
	if _, err := store.Get(ctx, "rep-1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
	if err := store.Save(ctx, "rep-1", nil, time.Minute); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
	if NewRedisReportStore(nil) != nil {
		t.Fatalf("expected nil store without client")
	}
}
