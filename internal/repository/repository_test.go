package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"creator-growth/internal/db"
	"creator-growth/internal/domain"
)

func newSQLiteSet(t *testing.T) Set {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "fame.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewSQLiteSet(conn)
}

func backends(t *testing.T) map[string]Set {
	return map[string]Set{
		"memory": NewMemorySet(),
		"sqlite": newSQLiteSet(t),
	}
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestQuizRepositories(t *testing.T) {
	ctx := context.Background()
	for name, set := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first := domain.QuizSubmission{
				ID:     "q1",
				UserID: "u1",
				Email:  "ana@example.com",
				Profile: domain.CreatorProfile{
					Name: "Ana", Niche: "beauty", Platform: "Instagram",
					Followers: 50000, EngagementRate: 0.08, MonthlyViews: 500000,
				},
				FameScore: 38,
				Tier:      "EMERGING",
				CreatedAt: baseTime,
			}
			second := first
			second.ID = "q2"
			second.FameScore = 41
			second.CreatedAt = baseTime.Add(time.Hour)
			other := first
			other.ID = "q3"
			other.UserID = "u2"
			other.CreatedAt = baseTime.Add(30 * time.Minute)

			for _, q := range []domain.QuizSubmission{first, second, other} {
				if err := set.Quizzes.Save(ctx, q); err != nil {
					t.Fatalf("save %s: %v", q.ID, err)
				}
			}

			got, err := set.Quizzes.GetByUserID(ctx, "u1")
			if err != nil {
				t.Fatalf("get by user: %v", err)
			}
			if diff := cmp.Diff([]domain.QuizSubmission{second, first}, got); diff != "" {
				t.Fatalf("quizzes mismatch (-want +got):\n%s", diff)
			}

			all, err := set.Quizzes.ListAll(ctx)
			if err != nil {
				t.Fatalf("list all: %v", err)
			}
			if len(all) != 3 || all[0].ID != "q2" || all[2].ID != "q1" {
				t.Fatalf("unexpected list order %+v", all)
			}

			none, err := set.Quizzes.GetByUserID(ctx, "nobody")
			if err != nil || len(none) != 0 {
				t.Fatalf("expected no rows, got %v, %v", none, err)
			}
		})
	}
}

func TestDownloadRepositories(t *testing.T) {
	ctx := context.Background()
	for name, set := range backends(t) {
		t.Run(name, func(t *testing.T) {
			events := []domain.DownloadEvent{
				{ID: "d1", UserID: "u1", ReportID: "r1", CreatedAt: baseTime},
				{ID: "d2", UserID: "u1", ProductID: "creator-media-kit", CreatedAt: baseTime.Add(time.Minute)},
				{ID: "d3", UserID: "u2", ProductID: "creator-media-kit", CreatedAt: baseTime.Add(2 * time.Minute)},
				{ID: "d4", UserID: "u2", ProductID: "preset-bundle", Email: "b@example.com", CreatedAt: baseTime.Add(3 * time.Minute)},
			}
			for _, e := range events {
				if err := set.Downloads.Save(ctx, e); err != nil {
					t.Fatalf("save %s: %v", e.ID, err)
				}
			}

			counts, err := set.Downloads.CountByProduct(ctx)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if diff := cmp.Diff(map[string]int64{"creator-media-kit": 2, "preset-bundle": 1}, counts); diff != "" {
				t.Fatalf("counts mismatch (-want +got):\n%s", diff)
			}

			byUser, err := set.Downloads.GetByUserID(ctx, "u2")
			if err != nil {
				t.Fatalf("get by user: %v", err)
			}
			if diff := cmp.Diff([]domain.DownloadEvent{events[3], events[2]}, byUser); diff != "" {
				t.Fatalf("downloads mismatch (-want +got):\n%s", diff)
			}

			all, err := set.Downloads.ListAll(ctx)
			if err != nil || len(all) != 4 {
				t.Fatalf("expected 4 downloads, got %d, %v", len(all), err)
			}
		})
	}
}

func TestPaymentRepositories(t *testing.T) {
	ctx := context.Background()
	for name, set := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p := domain.Payment{
				ID:          "p1",
				UserID:      "u1",
				Email:       "ana@example.com",
				ProductID:   "fame-report-premium",
				AmountCents: 2900,
				Currency:    "usd",
				Provider:    "stripe",
				ExternalID:  "pi_123",
				Status:      domain.PaymentStatusSucceeded,
				CreatedAt:   baseTime,
			}
			if err := set.Payments.Save(ctx, p); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := set.Payments.GetByUserID(ctx, "u1")
			if err != nil {
				t.Fatalf("get by user: %v", err)
			}
			if diff := cmp.Diff([]domain.Payment{p}, got); diff != "" {
				t.Fatalf("payments mismatch (-want +got):\n%s", diff)
			}
			all, err := set.Payments.ListAll(ctx)
			if err != nil || len(all) != 1 {
				t.Fatalf("expected 1 payment, got %d, %v", len(all), err)
			}
		})
	}
}

func TestSQLiteDuplicateIDFails(t *testing.T) {
	set := newSQLiteSet(t)
	ctx := context.Background()
	p := domain.Payment{ID: "dup", UserID: "u", ProductID: "x", Currency: "usd", Status: domain.PaymentStatusPending, CreatedAt: baseTime}
	if err := set.Payments.Save(ctx, p); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := set.Payments.Save(ctx, p); err == nil {
		t.Fatalf("expected primary key violation")
	}
}

func TestSQLiteTimeLayoutRoundTrip(t *testing.T) {
	in := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.FixedZone("ART", -3*3600))
	out, err := parseSQLiteTime(formatSQLiteTime(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("expected %v, got %v", in, out)
	}
}
