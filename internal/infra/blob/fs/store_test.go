package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creaturecore/internal/infra/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestPutWritesDataAndSidecar(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	info, err := s.Put(ctx, "snapshots/state.json", strings.NewReader(`{"count":2}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"origin": "test"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"count":2}`)) || info.ETag == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "snapshots", "state.json")); err != nil {
		t.Fatalf("data file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "snapshots", "state.json.meta")); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}

	if _, err := s.Put(ctx, "snapshots/state.json", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatal("overwrite should fail")
	}
}

func TestGetHeadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.Put(ctx, "a/b.json", strings.NewReader("payload"), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	info, rc, err := s.Get(ctx, "a/b.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" {
		t.Fatalf("body = %s", body)
	}
	head, err := s.Head(ctx, "a/b.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ETag != info.ETag || head.Size != info.Size || head.ContentType != "application/json" {
		t.Fatalf("head mismatch: %+v vs %+v", head, info)
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, key := range []string{"snapshots/2.json", "snapshots/1.json", "misc/x"} {
		if _, err := s.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "snapshots/1.json" || infos[1].Key != "snapshots/2.json" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	ok, err := s.Delete(ctx, "snapshots/1.json")
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	if ok, _ := s.Delete(ctx, "snapshots/1.json"); ok {
		t.Fatal("second delete reported existing")
	}
	infos, err = s.List(ctx, "snapshots/")
	if err != nil || len(infos) != 1 {
		t.Fatalf("listing after delete: %v %+v", err, infos)
	}
}

func TestKeySanitization(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, key := range []string{"", "  ", "../escape", "a/../../b", "/absolute"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}
