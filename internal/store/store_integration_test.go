//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mrojasb/jobs-radar/internal/posting"
)

// getTestStore connects to the database named by TEST_DATABASE_URL and
// ensures the schema. Tests are skipped when the variable is unset.
func getTestStore(t *testing.T) *Store {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := Connect(ctx, databaseURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}
	return s
}

func cleanupPostings(t *testing.T, s *Store, prefix string) {
	t.Helper()
	_, err := s.pool.Exec(context.Background(),
		`DELETE FROM postings WHERE external_id LIKE $1`, prefix+"%")
	if err != nil {
		t.Logf("cleanup failed: %v", err)
	}
}

func testBatch(prefix string, n int) []posting.Posting {
	now := time.Now().UTC()
	batch := make([]posting.Posting, n)
	for i := range batch {
		batch[i] = posting.Posting{
			ExternalID:     fmt.Sprintf("%s_%d", prefix, i),
			Title:          fmt.Sprintf("DevOps Engineer %d", i),
			Company:        "Integration Test Corp",
			Location:       "Santiago, Chile",
			Description:    "CI/CD, Kubernetes, Terraform",
			EmploymentType: posting.DefaultEmploymentType,
			SourceURL:      fmt.Sprintf("https://www.linkedin.com/jobs/view/%s_%d", prefix, i),
			PostedAt:       now.Add(-time.Duration(i) * time.Hour),
			AcquiredAt:     now,
		}
	}
	return batch
}

// TestIntegration_SavePostings_StaleCacheNeverSuppresses covers the contract
// that the seen-ID cache is advisory: an ID present in Redis but absent from
// the database must still be persisted. Requires TEST_REDIS_URL in addition
// to TEST_DATABASE_URL.
func TestIntegration_SavePostings_StaleCacheNeverSuppresses(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping cache integration test")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("invalid TEST_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()
	s.WithCache(client)

	prefix := "itest_" + uuid.New().String()
	defer cleanupPostings(t, s, prefix)

	batch := testBatch(prefix, 1)

	// Simulate a database reset that Redis survived: the ID is cached but
	// the row does not exist.
	if err := client.SAdd(ctx, seenIDsKey, batch[0].ExternalID).Err(); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}
	defer client.SRem(ctx, seenIDsKey, batch[0].ExternalID)

	saved, err := s.SavePostings(ctx, batch)
	if err != nil {
		t.Fatalf("SavePostings failed: %v", err)
	}
	if saved != 1 {
		t.Errorf("saved = %d, want 1: a stale cache entry must not suppress persistence", saved)
	}

	count, err := s.CountPostings(ctx)
	if err != nil {
		t.Fatalf("CountPostings failed: %v", err)
	}
	if count < 1 {
		t.Error("posting was not persisted")
	}
}

func TestIntegration_SavePostings_Idempotent(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	prefix := "itest_" + uuid.New().String()
	defer cleanupPostings(t, s, prefix)

	batch := testBatch(prefix, 5)

	saved, err := s.SavePostings(ctx, batch)
	if err != nil {
		t.Fatalf("first SavePostings failed: %v", err)
	}
	if saved != 5 {
		t.Errorf("first save: saved = %d, want 5", saved)
	}

	before, err := s.CountPostings(ctx)
	if err != nil {
		t.Fatalf("CountPostings failed: %v", err)
	}

	// Second identical batch must save nothing and change nothing.
	saved, err = s.SavePostings(ctx, batch)
	if err != nil {
		t.Fatalf("second SavePostings failed: %v", err)
	}
	if saved != 0 {
		t.Errorf("second save: saved = %d, want 0", saved)
	}

	after, err := s.CountPostings(ctx)
	if err != nil {
		t.Fatalf("CountPostings failed: %v", err)
	}
	if before != after {
		t.Errorf("stored count changed across duplicate batch: %d -> %d", before, after)
	}
}

func TestIntegration_SavePostings_PartialOverlap(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	prefix := "itest_" + uuid.New().String()
	defer cleanupPostings(t, s, prefix)

	first := testBatch(prefix, 3)
	if _, err := s.SavePostings(ctx, first); err != nil {
		t.Fatalf("SavePostings failed: %v", err)
	}

	// Overlapping batch: 3 duplicates plus 2 new postings.
	second := testBatch(prefix, 5)
	saved, err := s.SavePostings(ctx, second)
	if err != nil {
		t.Fatalf("SavePostings failed: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2 (duplicates skipped silently)", saved)
	}
}

func TestIntegration_RunLifecycle(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "DevOps", "Chile", 50)
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	created, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if created.Succeeded {
		t.Error("placeholder run must start with succeeded = false")
	}
	if created.CompletedAt != nil {
		t.Error("placeholder run must not be completed")
	}

	err = s.CompleteRun(ctx, id, RunCompletion{FoundCount: 7, SavedCount: 5, Succeeded: true})
	if err != nil {
		t.Fatalf("CompleteRun failed: %v", err)
	}

	done, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if !done.Succeeded || done.FoundCount != 7 || done.SavedCount != 5 {
		t.Errorf("unexpected completed run: %+v", done)
	}
	if done.CompletedAt == nil || done.CompletedAt.Before(done.StartedAt) {
		t.Errorf("completed_at must be set and >= started_at, got %v / %v", done.CompletedAt, done.StartedAt)
	}
	if done.ErrorDetail != nil {
		t.Error("successful run must not carry error_detail")
	}
}

func TestIntegration_CompleteRun_Failure(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	id, err := s.CreateRun(ctx, "DevOps", "Chile", 10)
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	err = s.CompleteRun(ctx, id, RunCompletion{Succeeded: false, ErrorDetail: "storage unavailable"})
	if err != nil {
		t.Fatalf("CompleteRun failed: %v", err)
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Succeeded {
		t.Error("run must be marked failed")
	}
	if run.ErrorDetail == nil || *run.ErrorDetail != "storage unavailable" {
		t.Errorf("error_detail = %v, want 'storage unavailable'", run.ErrorDetail)
	}
}

func TestIntegration_ListPostings_FiltersAndOrder(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	prefix := "itest_" + uuid.New().String()
	defer cleanupPostings(t, s, prefix)

	now := time.Now().UTC()
	batch := []posting.Posting{
		{
			ExternalID: prefix + "_a", Title: "DevOps Engineer", Company: "TechChile SpA",
			Location: "Santiago, Chile", Description: "Fluent English required",
			RequiresEnglish: true, PostedAt: now.Add(-2 * time.Hour), AcquiredAt: now,
		},
		{
			ExternalID: prefix + "_b", Title: "SRE", Company: "Banco Digital",
			Location: "Santiago, Chile", Description: "Kubernetes y Prometheus",
			RequiresEnglish: false, PostedAt: now.Add(-1 * time.Hour), AcquiredAt: now,
		},
	}
	if _, err := s.SavePostings(ctx, batch); err != nil {
		t.Fatalf("SavePostings failed: %v", err)
	}

	noEnglish := true
	got, err := s.ListPostings(ctx, ListFilter{NoEnglish: &noEnglish, Company: "Banco"})
	if err != nil {
		t.Fatalf("ListPostings failed: %v", err)
	}
	if len(got) != 1 || got[0].ExternalID != prefix+"_b" {
		t.Errorf("unexpected filter result: %+v", got)
	}

	all, err := s.ListPostings(ctx, ListFilter{Search: "Kubernetes", Limit: 50})
	if err != nil {
		t.Fatalf("ListPostings failed: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].PostedAt.After(all[i-1].PostedAt) {
			t.Error("results must be ordered newest first by posted_at")
		}
	}
}
