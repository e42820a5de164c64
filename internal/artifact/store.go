package artifact

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Store owns the two history tables: versions per artifact and snapshots
// per file path. It is the sole mutator of both; callers read through the
// query methods and mutate only through CreateVersion, the Clear methods,
// and Reset.
//
// All methods are safe for concurrent use. Append plus eviction happens
// atomically per key, so the monotonic-version and cap invariants hold
// under concurrent writers.
type Store struct {
	mu sync.RWMutex

	artifactCap int
	fileCap     int

	versions map[string]*history[*Version]     // keyed by artifact id
	files    map[string]*history[*FileVersion] // keyed by file path

	seq    uint64 // disambiguates version ids minted in the same millisecond
	logger *slog.Logger
}

// New creates a Store.
//
// Parameters:
//   - artifactCap: max versions kept per artifact (<= 0 uses DefaultArtifactCap)
//   - fileCap: max snapshots kept per file path (<= 0 uses DefaultFileCap)
//   - logger: logger for debugging (nil = use default)
func New(artifactCap, fileCap int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		artifactCap: NormalizeArtifactCap(artifactCap),
		fileCap:     NormalizeFileCap(fileCap),
		versions:    make(map[string]*history[*Version]),
		files:       make(map[string]*history[*FileVersion]),
		logger:      logger,
	}
}

// CreateVersion records a new version for an artifact and derives file
// snapshots from its file changes.
//
// The version number is one past the artifact's current latest, starting
// at 1. The version is appended to the artifact's history, and every file
// change with captured content adds a snapshot to that path's history,
// both with FIFO eviction. When ids are non-empty, creation always
// succeeds; an empty changes list records a version with no changes.
//
// Returns the created version. Returns ErrEmptyArtifactID or
// ErrEmptyMessageID without mutating anything.
func (s *Store) CreateVersion(artifactID, messageID string, changes []Change, description string) (*Version, error) {
	if artifactID == "" {
		return nil, ErrEmptyArtifactID
	}
	if messageID == "" {
		return nil, ErrEmptyMessageID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.versions[artifactID]
	if h == nil {
		h = newHistory[*Version](s.artifactCap)
		s.versions[artifactID] = h
	}

	number := 1
	if latest, ok := h.newest(); ok {
		number = latest.Number + 1
	}

	now := time.Now().UTC()
	v := &Version{
		ID:          s.nextID(artifactID, number, now),
		ArtifactID:  artifactID,
		MessageID:   messageID,
		Number:      number,
		Timestamp:   now,
		Changes:     cloneChanges(changes),
		Description: description,
	}
	evicted := h.push(v)

	snapshots := s.recordSnapshots(v)

	s.logger.Debug("created version",
		"artifact_id", artifactID,
		"version", number,
		"changes", len(v.Changes),
		"snapshots", snapshots,
		"evicted", evicted)
	return v.Clone(), nil
}

// recordSnapshots appends one snapshot per file path captured by v.
// A path written more than once in the same version gets a single
// snapshot holding the last content, in first-touch order.
// Caller must hold the write lock.
func (s *Store) recordSnapshots(v *Version) int {
	var paths []string
	contents := make(map[string]string)
	for _, c := range v.Changes {
		if c.Kind != KindFile || c.NewContent == nil || c.FilePath == "" {
			continue
		}
		if _, seen := contents[c.FilePath]; !seen {
			paths = append(paths, c.FilePath)
		}
		contents[c.FilePath] = *c.NewContent
	}

	for _, path := range paths {
		fh := s.files[path]
		if fh == nil {
			fh = newHistory[*FileVersion](s.fileCap)
			s.files[path] = fh
		}
		fh.push(&FileVersion{
			FilePath:   path,
			Content:    contents[path],
			Timestamp:  v.Timestamp,
			ArtifactID: v.ArtifactID,
			Number:     v.Number,
		})
	}
	return len(paths)
}

// nextID builds a version id that stays unique even when two versions
// for the same artifact are minted in the same millisecond.
func (s *Store) nextID(artifactID string, number int, ts time.Time) string {
	s.seq++
	return fmt.Sprintf("%s-%d-%d-%d", artifactID, number, ts.UnixMilli(), s.seq)
}

// VersionsForArtifact returns the artifact's versions oldest-first.
// Unknown artifacts return an empty slice.
func (s *Store) VersionsForArtifact(artifactID string) []*Version {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.versions[artifactID]
	if h == nil {
		return []*Version{}
	}
	out := make([]*Version, 0, h.size())
	for _, v := range h.all() {
		out = append(out, v.Clone())
	}
	return out
}

// Version returns the artifact's version with the given number.
func (s *Store) Version(artifactID string, number int) (*Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versionLocked(artifactID, number)
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// versionLocked looks up a version without copying. Version numbers in a
// history are contiguous (monotonic +1, FIFO eviction from the front), so
// the lookup is a direct index. Caller must hold at least the read lock.
func (s *Store) versionLocked(artifactID string, number int) (*Version, bool) {
	h := s.versions[artifactID]
	if h == nil {
		return nil, false
	}
	newest, ok := h.newest()
	if !ok {
		return nil, false
	}
	oldest := newest.Number - h.size() + 1
	if number < oldest || number > newest.Number {
		return nil, false
	}
	return h.at(number - oldest), true
}

// LatestVersion returns the artifact's most recent version.
func (s *Store) LatestVersion(artifactID string) (*Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.versions[artifactID]
	if h == nil {
		return nil, false
	}
	v, ok := h.newest()
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// ClearArtifact removes the artifact's version history entirely.
// File histories are untouched: snapshots remain queryable even after
// the versions that produced them are gone. Unknown ids are a no-op.
func (s *Store) ClearArtifact(artifactID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.versions[artifactID]; !ok {
		return
	}
	delete(s.versions, artifactID)
	s.logger.Debug("cleared artifact history", "artifact_id", artifactID)
}

// FileVersions returns the path's snapshots oldest-first.
// Unknown paths return an empty slice.
func (s *Store) FileVersions(path string) []*FileVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.files[path]
	if h == nil {
		return []*FileVersion{}
	}
	out := make([]*FileVersion, 0, h.size())
	for _, fv := range h.all() {
		out = append(out, fv.Clone())
	}
	return out
}

// FileAtVersion returns the path's snapshot recorded by the given
// artifact version. At most one snapshot matches: a version records a
// single snapshot per path.
func (s *Store) FileAtVersion(path, artifactID string, number int) (*FileVersion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.files[path]
	if h == nil {
		return nil, false
	}
	for i := h.size() - 1; i >= 0; i-- {
		fv := h.at(i)
		if fv.ArtifactID == artifactID && fv.Number == number {
			return fv.Clone(), true
		}
	}
	return nil, false
}

// LatestFileVersion returns the path's most recent snapshot.
func (s *Store) LatestFileVersion(path string) (*FileVersion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.files[path]
	if h == nil {
		return nil, false
	}
	fv, ok := h.newest()
	if !ok {
		return nil, false
	}
	return fv.Clone(), true
}

// ClearFile removes the path's snapshot history entirely.
// Version histories are untouched. Unknown paths are a no-op.
func (s *Store) ClearFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[path]; !ok {
		return
	}
	delete(s.files, path)
	s.logger.Debug("cleared file history", "file_path", path)
}

// Reset wipes both tables.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.versions = make(map[string]*history[*Version])
	s.files = make(map[string]*history[*FileVersion])
	s.logger.Debug("reset store")
}

// CompareVersions reports which file paths were added, modified, or
// removed between two versions of an artifact, judged by each version's
// captured file contents (last write wins when a version touches a path
// twice). Paths whose content is identical in both versions are omitted.
//
// If either version is absent the result is empty on all three lists;
// missing history is an ordinary outcome here, not an error.
func (s *Store) CompareVersions(artifactID string, from, to int) Comparison {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cmp := Comparison{Added: []string{}, Modified: []string{}, Removed: []string{}}

	fromV, okFrom := s.versionLocked(artifactID, from)
	toV, okTo := s.versionLocked(artifactID, to)
	if !okFrom || !okTo {
		return cmp
	}

	fromFiles := fromV.fileContents()
	toFiles := toV.fileContents()

	for path, content := range toFiles {
		before, existed := fromFiles[path]
		switch {
		case !existed:
			cmp.Added = append(cmp.Added, path)
		case before != content:
			cmp.Modified = append(cmp.Modified, path)
		}
	}
	for path := range fromFiles {
		if _, still := toFiles[path]; !still {
			cmp.Removed = append(cmp.Removed, path)
		}
	}

	slices.Sort(cmp.Added)
	slices.Sort(cmp.Modified)
	slices.Sort(cmp.Removed)
	return cmp
}

// History returns one Summary per version, oldest-first.
// Unknown artifacts return an empty slice.
func (s *Store) History(artifactID string) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.versions[artifactID]
	if h == nil {
		return []Summary{}
	}
	out := make([]Summary, 0, h.size())
	for _, v := range h.all() {
		out = append(out, v.Summarize())
	}
	return out
}

// Stats returns current table sizes.
func (s *Store) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := StoreStats{
		Artifacts: len(s.versions),
		Files:     len(s.files),
	}
	for _, h := range s.versions {
		stats.Versions += h.size()
	}
	for _, h := range s.files {
		stats.FileVersions += h.size()
	}
	return stats
}

func cloneChanges(changes []Change) []Change {
	out := make([]Change, len(changes))
	for i, c := range changes {
		out[i] = c.Clone()
	}
	return out
}
