package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	infraClaims "github.com/pharmafield/expenseflow/internal/infrastructure/claims"
)

func TestLandingWatcherSchedulesRun(t *testing.T) {
	root := t.TempDir()

	repo := infraClaims.NewInMemoryClaimRepository()
	claim := domainClaims.NewDraft(domainClaims.DraftPayload{VisitID: "VIS-001"})
	claim.ID = "EXP-landed"
	repo.Save(claim)

	runner := &recordingRunner{}
	trigger := NewTrigger(repo, runner, 10*time.Millisecond, nil)
	watcher := NewLandingWatcher(root, trigger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcherDone := make(chan error, 1)
	go func() { watcherDone <- watcher.Run(ctx) }()

	// Give the watcher time to establish its watch before landing files.
	time.Sleep(100 * time.Millisecond)

	claimDir := filepath.Join(root, "raw", "claims", "EXP-landed")
	if err := os.MkdirAll(claimDir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(claimDir, "claim.json"), []byte(`{}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for runner.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher never scheduled a pipeline run")
		case <-time.After(20 * time.Millisecond):
		}
	}

	runner.mu.Lock()
	got := runner.runs[0]
	runner.mu.Unlock()
	if got != "EXP-landed" {
		t.Errorf("pipeline ran for %q, want EXP-landed", got)
	}

	cancel()
	select {
	case err := <-watcherDone:
		if err != nil {
			t.Errorf("watcher returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop on cancel")
	}
}

func TestClaimIDFromPath(t *testing.T) {
	w := NewLandingWatcher("/lake", nil, nil)

	tests := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/lake/raw/claims/EXP-1/claim.json", "EXP-1", true},
		{"/lake/raw/claims/EXP-1/other.json", "", false},
		{"/lake/raw/claims/claim.json", "", false},
		{"/lake/raw/receipts/EXP-1/claim.json", "", false},
	}
	for _, tt := range tests {
		id, ok := w.claimIDFromPath(tt.path)
		if id != tt.id || ok != tt.ok {
			t.Errorf("claimIDFromPath(%q) = %q, %v; want %q, %v", tt.path, id, ok, tt.id, tt.ok)
		}
	}
}
