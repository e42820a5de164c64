package artifact

import "errors"

var (
	// ErrEmptyArtifactID is returned when CreateVersion is called without
	// an artifact identifier.
	ErrEmptyArtifactID = errors.New("artifact id is empty")

	// ErrEmptyMessageID is returned when CreateVersion is called without
	// a message identifier.
	ErrEmptyMessageID = errors.New("message id is empty")

	// ErrInvalidSnapshot is returned when an imported snapshot fails
	// structural validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrSnapshotLocked is returned when another process holds the
	// snapshot file lock.
	ErrSnapshotLocked = errors.New("snapshot file is locked")
)

const (
	// DefaultArtifactCap is the number of versions kept per artifact.
	DefaultArtifactCap = 50

	// DefaultFileCap is the number of snapshots kept per file path.
	DefaultFileCap = 100
)

// NormalizeArtifactCap returns the default cap for non-positive values.
func NormalizeArtifactCap(n int) int {
	if n <= 0 {
		return DefaultArtifactCap
	}
	return n
}

// NormalizeFileCap returns the default cap for non-positive values.
func NormalizeFileCap(n int) int {
	if n <= 0 {
		return DefaultFileCap
	}
	return n
}
