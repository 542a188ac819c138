package snapshot

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"

	"timeherosim/internal/app/ports"
	"timeherosim/internal/app/sim"
)

func engineSnapshot(t *testing.T, ticks int) sim.Snapshot {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.RunID = "snap-run"
	e, err := sim.Initialize(cfg, nil)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for i := 0; i < ticks; i++ {
		e.Tick()
	}
	return e.Snapshot()
}

func TestCodec_RoundTrip(t *testing.T) {
	snap := engineSnapshot(t, 25)
	codec := Codec{}

	payload, err := codec.Encode(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	h, err := ReadHeader(payload)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if h.RunID != "snap-run" || h.Tick != 25 || h.Version != Version {
		t.Fatalf("header mismatch: got=%+v", h)
	}
	got, err := codec.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_RejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	enc, _ := zstd.NewWriter(&buf)
	enc.Write([]byte(`{"version":99,"run_id":"x"}` + "\n{}"))
	enc.Close()

	if _, err := (Codec{}).Decode(buf.Bytes()); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got=%v", err)
	}
}

func TestFileStore_SaveLatestList(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	var _ ports.SnapshotRepository = store

	for _, tick := range []int64{144, 12, 288} {
		rec := ports.SnapshotRecord{RunID: "run-a", Tick: tick, Day: int(tick/144) + 1, Payload: []byte{byte(tick)}}
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("save %d: %v", tick, err)
		}
	}
	if err := store.Save(ctx, ports.SnapshotRecord{RunID: "run-a", Tick: 144}); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got=%v", err)
	}

	latest, err := store.Latest(ctx, "run-a")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Tick != 288 || latest.Day != 3 || !bytes.Equal(latest.Payload, []byte{byte(288 % 256)}) {
		t.Fatalf("latest mismatch: got=%+v", latest)
	}
	list, _ := store.ListByRunID(ctx, "run-a", 0)
	if len(list) != 3 || list[0].Tick != 12 {
		t.Fatalf("list order mismatch: got=%+v", list)
	}
	if _, err := store.Latest(ctx, "run-b"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
	if err := store.Save(ctx, ports.SnapshotRecord{RunID: "../escape", Tick: 1}); err == nil {
		t.Fatalf("expected invalid run id to be rejected")
	}
}
