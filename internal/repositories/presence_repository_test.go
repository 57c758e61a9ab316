package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
)

func TestPresenceDefaultsToOffline(t *testing.T) {
	repo := NewMemoryPresenceRepository()
	status, err := repo.GetStatus(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != models.PresenceOffline {
		t.Fatalf("status = %q, want offline for an unknown user", status)
	}
}

func TestPresenceSetAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPresenceRepository()

	for _, status := range []string{models.PresenceOnline, models.PresenceStandby} {
		if err := repo.SetStatus(ctx, 1, status); err != nil {
			t.Fatalf("SetStatus(%s): %v", status, err)
		}
		got, err := repo.GetStatus(ctx, 1)
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if got != status {
			t.Fatalf("status = %q, want %q", got, status)
		}
	}
}

func TestPresenceRejectsUnknownStatus(t *testing.T) {
	repo := NewMemoryPresenceRepository()
	if err := repo.SetStatus(context.Background(), 1, "invisible"); err == nil {
		t.Fatal("expected an error for an unknown status")
	}
}

func TestPresenceExplicitOffline(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPresenceRepository()

	if err := repo.SetStatus(ctx, 1, models.PresenceOnline); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := repo.SetStatus(ctx, 1, models.PresenceOffline); err != nil {
		t.Fatalf("SetStatus(offline): %v", err)
	}
	got, _ := repo.GetStatus(ctx, 1)
	if got != models.PresenceOffline {
		t.Fatalf("status = %q, want offline", got)
	}
}

func TestPresenceDecaysWithoutHeartbeat(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPresenceRepository()

	current := time.Now()
	repo.now = func() time.Time { return current }

	if err := repo.SetStatus(ctx, 1, models.PresenceOnline); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	// Still fresh just inside the TTL.
	current = current.Add(PresenceTTL - time.Second)
	got, _ := repo.GetStatus(ctx, 1)
	if got != models.PresenceOnline {
		t.Fatalf("status = %q, want online inside TTL", got)
	}

	// A heartbeat extends the window.
	if err := repo.SetStatus(ctx, 1, models.PresenceOnline); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	current = current.Add(PresenceTTL - time.Second)
	got, _ = repo.GetStatus(ctx, 1)
	if got != models.PresenceOnline {
		t.Fatalf("status = %q, want online after heartbeat refresh", got)
	}

	// No further heartbeat: the entry decays to offline.
	current = current.Add(2 * time.Second)
	got, _ = repo.GetStatus(ctx, 1)
	if got != models.PresenceOffline {
		t.Fatalf("status = %q, want offline after TTL lapse", got)
	}
}

func TestPresenceBatchLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPresenceRepository()

	if err := repo.SetStatus(ctx, 1, models.PresenceOnline); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := repo.SetStatus(ctx, 2, models.PresenceStandby); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	statuses, err := repo.GetStatuses(ctx, []uint{1, 2, 3})
	if err != nil {
		t.Fatalf("GetStatuses: %v", err)
	}
	want := map[uint]string{1: models.PresenceOnline, 2: models.PresenceStandby, 3: models.PresenceOffline}
	for id, s := range want {
		if statuses[id] != s {
			t.Errorf("user %d status = %q, want %q", id, statuses[id], s)
		}
	}
}
