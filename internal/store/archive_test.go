package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/davzula/blinkwatch/internal/blink"
)

// TestArchiveIntegration runs a full integration test against a real Postgres container.
// It requires Docker to be running.
func TestArchiveIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Explicitly check for Docker availability and fail hard if missing.
	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blinkwatch_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	// Initialize Archive (runs migrations)
	a, err := OpenArchive(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to archive: %v", err)
	}
	defer a.Close(ctx)

	// --- Test Scenarios ---

	started := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	if err := a.EnsureSession(ctx, "sess-1", "dee", started); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	// Idempotent re-registration
	if err := a.EnsureSession(ctx, "sess-1", "dee", started); err != nil {
		t.Fatalf("EnsureSession re-run failed: %v", err)
	}

	rec := &blink.Record{
		SessionID:              "sess-1",
		UserName:               "dee",
		BlinksPerMinute:        14,
		HealthStatus:           blink.StatusHealthy.Label(),
		TotalBlinks:            14,
		SessionDurationMinutes: 1.0,
		OptimalRate:            blink.OptimalRate,
		Type:                   blink.RecordType,
		Kind:                   blink.KindMinute,
		Timestamp:              started.Add(time.Minute).Format(time.RFC3339),
	}
	if err := a.InsertRecord(ctx, rec); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	final := &blink.Record{
		SessionID:              "sess-1",
		UserName:               "dee",
		BlinksPerMinute:        15,
		HealthStatus:           blink.StatusHealthy.Label(),
		TotalBlinks:            30,
		SessionDurationMinutes: 2.0,
		OptimalRate:            blink.OptimalRate,
		Type:                   blink.RecordType,
		Kind:                   blink.KindFinal,
		Timestamp:              started.Add(2 * time.Minute).Format(time.RFC3339),
	}
	if err := a.InsertRecord(ctx, final); err != nil {
		t.Fatalf("InsertRecord (final) failed: %v", err)
	}

	records, err := a.ListRecords(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	// Newest first
	if records[0].Kind != blink.KindFinal {
		t.Errorf("Expected final record first, got %q", records[0].Kind)
	}
	if records[0].UserName != "dee" || records[0].TotalBlinks != 30 {
		t.Errorf("Final record mangled: %+v", records[0])
	}
	if records[1].BlinksPerMinute != 14 {
		t.Errorf("Minute record mangled: %+v", records[1])
	}

	// Malformed timestamps never reach SQL
	bad := &blink.Record{SessionID: "sess-1", Timestamp: "yesterday-ish"}
	if err := a.InsertRecord(ctx, bad); err == nil {
		t.Error("Expected an error for a malformed record timestamp")
	}

	if err := a.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
}
