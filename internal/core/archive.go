package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"creaturecore/internal/infra/blob"
	"creaturecore/internal/infra/persistence/memory"
)

// StateExporter is satisfied by every registry store; the sqlite and postgres
// drivers expose it through their embedded in-memory store.
type StateExporter interface {
	ExportState() memory.Snapshot
}

// SnapshotArchiver writes registry snapshots to a blob store for operational
// backup and offline verification. Best-effort tooling outside the atomic
// transaction path.
type SnapshotArchiver struct {
	store StateExporter
	blobs blob.Store
	clock func() time.Time
}

// NewSnapshotArchiver constructs an archiver over the given store and blob
// backend.
func NewSnapshotArchiver(store StateExporter, blobs blob.Store) *SnapshotArchiver {
	return &SnapshotArchiver{store: store, blobs: blobs, clock: time.Now}
}

// SetClock overrides the timestamp source used in archive keys.
func (a *SnapshotArchiver) SetClock(clock func() time.Time) {
	if clock != nil {
		a.clock = clock
	}
}

// Archive serializes the current registry snapshot and writes it under
// snapshots/<timestamp>-<uuid>.json, returning the key.
func (a *SnapshotArchiver) Archive(ctx context.Context) (string, error) {
	snapshot := a.store.ExportState()
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	key := fmt.Sprintf("snapshots/%s-%s.json", a.clock().UTC().Format("20060102T150405Z"), uuid.NewString())
	if _, err := a.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"creatures": fmt.Sprintf("%d", snapshot.Count)},
	}); err != nil {
		return "", fmt.Errorf("archive snapshot: %w", err)
	}
	return key, nil
}

// Restore reads the archived snapshot at key.
func (a *SnapshotArchiver) Restore(ctx context.Context, key string) (memory.Snapshot, error) {
	_, rc, err := a.blobs.Get(ctx, key)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("read archive: %w", err)
	}
	defer func() { _ = rc.Close() }()
	var snapshot memory.Snapshot
	if err := json.NewDecoder(rc).Decode(&snapshot); err != nil {
		return memory.Snapshot{}, fmt.Errorf("decode archive: %w", err)
	}
	return snapshot, nil
}

// List returns the keys of all archived snapshots, oldest first.
func (a *SnapshotArchiver) List(ctx context.Context) ([]string, error) {
	infos, err := a.blobs.List(ctx, "snapshots/")
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(infos))
	for i, info := range infos {
		keys[i] = info.Key
	}
	return keys, nil
}
