package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"timeherosim/internal/app/ports"
)

const fileExt = ".snap.zst"

// FileStore keeps one file per snapshot under Dir/<run id>/. File names
// carry tick and day so listing never opens a file.
type FileStore struct {
	Dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func fileName(tick int64, day int) string {
	return fmt.Sprintf("%012d-d%04d%s", tick, day, fileExt)
}

func parseFileName(name string) (tick int64, day int, ok bool) {
	base, found := strings.CutSuffix(name, fileExt)
	if !found {
		return 0, 0, false
	}
	tickPart, dayPart, found := strings.Cut(base, "-d")
	if !found {
		return 0, 0, false
	}
	t, err := strconv.ParseInt(tickPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	d, err := strconv.Atoi(dayPart)
	if err != nil {
		return 0, 0, false
	}
	return t, d, true
}

func (s *FileStore) runDir(runID string) (string, error) {
	if runID == "" || strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	return filepath.Join(s.Dir, runID), nil
}

func (s *FileStore) Save(_ context.Context, snap ports.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.runDir(snap.RunID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	entries, err := s.list(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.rec.Tick == snap.Tick {
			return ports.ErrConflict
		}
	}
	path := filepath.Join(dir, fileName(snap.Tick, snap.Day))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, snap.Payload, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	if !snap.SavedAt.IsZero() {
		_ = os.Chtimes(path, snap.SavedAt, snap.SavedAt)
	}
	return nil
}

func (s *FileStore) Latest(ctx context.Context, runID string) (ports.SnapshotRecord, error) {
	list, err := s.ListByRunID(ctx, runID, 1)
	if err != nil {
		return ports.SnapshotRecord{}, err
	}
	if len(list) == 0 {
		return ports.SnapshotRecord{}, ports.ErrNotFound
	}
	return list[0], nil
}

// ListByRunID returns the latest limit snapshots, oldest first.
func (s *FileStore) ListByRunID(_ context.Context, runID string, limit int) ([]ports.SnapshotRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	entries, err := s.list(dir)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]ports.SnapshotRecord, 0, len(entries))
	for _, e := range entries {
		payload, err := os.ReadFile(filepath.Join(dir, e.name))
		if err != nil {
			return nil, err
		}
		e.rec.Payload = payload
		out = append(out, e.rec)
	}
	return out, nil
}

type fileEntry struct {
	name string
	rec  ports.SnapshotRecord
}

func (s *FileStore) list(dir string) ([]fileEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	runID := filepath.Base(dir)
	out := make([]fileEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		tick, day, ok := parseFileName(de.Name())
		if !ok {
			continue
		}
		rec := ports.SnapshotRecord{RunID: runID, Tick: tick, Day: day}
		if info, err := de.Info(); err == nil {
			rec.SavedAt = info.ModTime()
		}
		out = append(out, fileEntry{name: de.Name(), rec: rec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rec.Tick < out[j].rec.Tick })
	return out, nil
}
