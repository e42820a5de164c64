package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Snapshot is a point-in-time JSON export of both history tables,
// oldest-first per key. It exists so history can survive a restart;
// the live store itself never touches disk.
type Snapshot struct {
	SavedAt   time.Time                 `json:"saved_at"`
	Artifacts map[string][]*Version     `json:"artifacts"`
	Files     map[string][]*FileVersion `json:"files"`
}

// Export returns a deep copy of the store's current contents.
func (s *Store) Export() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		SavedAt:   time.Now().UTC(),
		Artifacts: make(map[string][]*Version, len(s.versions)),
		Files:     make(map[string][]*FileVersion, len(s.files)),
	}
	for id, h := range s.versions {
		list := make([]*Version, 0, h.size())
		for _, v := range h.all() {
			list = append(list, v.Clone())
		}
		snap.Artifacts[id] = list
	}
	for path, h := range s.files {
		list := make([]*FileVersion, 0, h.size())
		for _, fv := range h.all() {
			list = append(list, fv.Clone())
		}
		snap.Files[path] = list
	}
	return snap
}

// Import replaces the store's contents with the snapshot's.
//
// The snapshot is validated before any state changes: every version must
// sit under its own artifact key with numbers ascending by exactly 1,
// and every file snapshot under its own path key. Histories longer than
// the store's caps are truncated to their newest entries.
func (s *Store) Import(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}

	for id, list := range snap.Artifacts {
		if id == "" {
			return fmt.Errorf("%w: empty artifact id key", ErrInvalidSnapshot)
		}
		for i, v := range list {
			if v == nil {
				return fmt.Errorf("%w: nil version under artifact %q", ErrInvalidSnapshot, id)
			}
			if v.ArtifactID != id {
				return fmt.Errorf("%w: version %q filed under artifact %q", ErrInvalidSnapshot, v.ID, id)
			}
			if v.Number < 1 {
				return fmt.Errorf("%w: artifact %q has version number %d", ErrInvalidSnapshot, id, v.Number)
			}
			if i > 0 && v.Number != list[i-1].Number+1 {
				return fmt.Errorf("%w: artifact %q version numbers jump from %d to %d",
					ErrInvalidSnapshot, id, list[i-1].Number, v.Number)
			}
		}
	}
	for path, list := range snap.Files {
		if path == "" {
			return fmt.Errorf("%w: empty file path key", ErrInvalidSnapshot)
		}
		for _, fv := range list {
			if fv == nil {
				return fmt.Errorf("%w: nil snapshot under file %q", ErrInvalidSnapshot, path)
			}
			if fv.FilePath != path {
				return fmt.Errorf("%w: snapshot for %q filed under %q", ErrInvalidSnapshot, fv.FilePath, path)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.versions = make(map[string]*history[*Version], len(snap.Artifacts))
	for id, list := range snap.Artifacts {
		if len(list) == 0 {
			continue
		}
		h := newHistory[*Version](s.artifactCap)
		// Pushing oldest-first lets the ring keep the newest entries
		// when the list exceeds the cap.
		for _, v := range list {
			h.push(v.Clone())
		}
		s.versions[id] = h
	}

	s.files = make(map[string]*history[*FileVersion], len(snap.Files))
	for path, list := range snap.Files {
		if len(list) == 0 {
			continue
		}
		h := newHistory[*FileVersion](s.fileCap)
		for _, fv := range list {
			h.push(fv.Clone())
		}
		s.files[path] = h
	}

	s.logger.Debug("imported snapshot",
		"artifacts", len(s.versions),
		"files", len(s.files),
		"saved_at", snap.SavedAt)
	return nil
}

// WriteSnapshot exports the store to path as indented JSON.
//
// The file lands via a temp file and rename, so a crash mid-write never
// leaves a truncated snapshot. A sibling .lock file guards against two
// processes writing the same path.
func (s *Store) WriteSnapshot(path string) error {
	snap := s.Export()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking snapshot file: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrSnapshotLocked, path)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	s.logger.Debug("wrote snapshot", "path", path, "bytes", len(data))
	return nil
}

// ReadSnapshot loads the snapshot at path into the store, replacing its
// contents. A missing file surfaces as a wrapped fs.ErrNotExist.
func (s *Store) ReadSnapshot(path string) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryRLock()
	if err != nil {
		return fmt.Errorf("locking snapshot file: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrSnapshotLocked, path)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	return s.Import(&snap)
}
