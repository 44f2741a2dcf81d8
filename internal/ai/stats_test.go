package ai

import (
	"testing"
	"time"
)

func TestModelStatsSnapshotPercentiles(t *testing.T) {
	stats := NewModelStats(time.Hour)
	stats.Record("embed", 100*time.Millisecond)
	stats.Record("embed", 200*time.Millisecond)
	stats.Record("embed", 300*time.Millisecond)
	stats.Record("embed", 400*time.Millisecond)
	stats.Record("embed", 500*time.Millisecond)

	snap := stats.Snapshot()["embed"]
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestModelStatsOperationsAreIndependent(t *testing.T) {
	stats := NewModelStats(time.Hour)
	stats.Record("embed", 100*time.Millisecond)
	stats.Record("generate", 2000*time.Millisecond)

	snaps := stats.Snapshot()
	if snaps["embed"].Count != 1 || snaps["embed"].MaxMs != 100 {
		t.Fatalf("unexpected embed window: %+v", snaps["embed"])
	}
	if snaps["generate"].Count != 1 || snaps["generate"].MaxMs != 2000 {
		t.Fatalf("unexpected generate window: %+v", snaps["generate"])
	}
}

func TestModelStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewModelStats(10 * time.Millisecond)
	stats.Record("embed", 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if snap, ok := stats.Snapshot()["embed"]; ok && snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record("embed", 200*time.Millisecond)
	snap := stats.Snapshot()["embed"]
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestModelStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewModelStats(time.Hour)
	stats.Record("embed", -10*time.Millisecond)
	snap := stats.Snapshot()["embed"]
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}
