package log

import (
	"path/filepath"
	"testing"

	"gearbench/internal/protocol"
	"gearbench/internal/sim/workshop"
)

func TestOpLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l, err := NewOpLogger(dir, "S1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	entries := []workshop.OpLogEntry{
		{Tick: 0, Instant: protocol.InstantReq{ID: "I1", Type: protocol.InstantAddGear, TemplateID: "MOTOR_12", X: 100, Y: 100}, GearID: 1, Digest: "aaa"},
		{Tick: 3, Instant: protocol.InstantReq{ID: "I2", Type: protocol.InstantMoveGear, GearID: 1, X: 200, Y: 150}, Digest: "bbb"},
		{Tick: 9, Instant: protocol.InstantReq{ID: "I3", Type: protocol.InstantDeleteGear, GearID: 1}, Digest: "ccc"},
	}
	for _, e := range entries {
		if err := l.WriteOp(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if want := filepath.Join(dir, "ops-S1.jsonl.zst"); l.Path() != want {
		t.Fatalf("path %s, want %s", l.Path(), want)
	}

	got, err := ReadOps(l.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("read %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d: %+v != %+v", i, got[i], entries[i])
		}
	}

	if err := l.WriteOp(entries[0]); err == nil {
		t.Fatalf("write after close succeeded")
	}
}
