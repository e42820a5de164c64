package artifact

import "time"

// Kind classifies a single change within a version.
type Kind string

const (
	KindFile     Kind = "file"
	KindShell    Kind = "shell-command"
	KindStart    Kind = "start-command"
	KindExternal Kind = "external-service"
)

// Valid reports whether k is one of the defined change kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFile, KindShell, KindStart, KindExternal:
		return true
	}
	return false
}

// Change records one action applied while producing a version.
//
// Zero values:
//   - Kind: "" (invalid, must be one of the Kind constants)
//   - FilePath: "" (meaningful only for KindFile)
//   - PreviousContent: nil (file did not exist before this change)
//   - NewContent: nil (content was not captured; produces no snapshot)
//   - Command: "" (meaningful only for KindShell and KindStart)
type Change struct {
	Kind            Kind    `json:"kind"`
	FilePath        string  `json:"file_path,omitempty"`
	PreviousContent *string `json:"previous_content,omitempty"`
	NewContent      *string `json:"new_content,omitempty"`
	Command         string  `json:"command,omitempty"`
}

// Clone returns a deep copy of the change.
func (c Change) Clone() Change {
	c.PreviousContent = cloneStringPtr(c.PreviousContent)
	c.NewContent = cloneStringPtr(c.NewContent)
	return c
}

// Version is one immutable revision of an artifact.
//
// Zero values:
//   - ID: "" (invalid, assigned by CreateVersion)
//   - ArtifactID: "" (invalid, required)
//   - MessageID: "" (invalid, required)
//   - Number: 0 (invalid, numbering starts at 1)
//   - Changes: nil (no changes recorded)
//   - Description: "" (no label)
type Version struct {
	ID          string    `json:"id"`
	ArtifactID  string    `json:"artifact_id"`
	MessageID   string    `json:"message_id"`
	Number      int       `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Changes     []Change  `json:"changes"`
	Description string    `json:"description,omitempty"`
}

// Clone returns a deep copy of the version.
func (v *Version) Clone() *Version {
	out := *v
	out.Changes = make([]Change, len(v.Changes))
	for i, c := range v.Changes {
		out.Changes[i] = c.Clone()
	}
	return &out
}

// Summarize returns the history line for this version.
func (v *Version) Summarize() Summary {
	var files, commands int
	for _, c := range v.Changes {
		switch c.Kind {
		case KindFile:
			files++
		case KindShell, KindStart:
			commands++
		}
	}
	return Summary{
		Number:       v.Number,
		Timestamp:    v.Timestamp,
		Description:  v.Description,
		FileCount:    files,
		CommandCount: commands,
	}
}

// fileContents returns the final captured content per file path, applying
// changes in order so a later write to the same path wins. Only file
// changes with captured content count; command changes never appear.
func (v *Version) fileContents() map[string]string {
	out := make(map[string]string)
	for _, c := range v.Changes {
		if c.Kind != KindFile || c.NewContent == nil || c.FilePath == "" {
			continue
		}
		out[c.FilePath] = *c.NewContent
	}
	return out
}

// FileVersion is one immutable snapshot of a file path, recorded as a
// side effect of CreateVersion.
type FileVersion struct {
	FilePath   string    `json:"file_path"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	ArtifactID string    `json:"artifact_id"`
	Number     int       `json:"version"`
}

// Clone returns a copy of the snapshot.
func (fv *FileVersion) Clone() *FileVersion {
	out := *fv
	return &out
}

// Comparison lists the file paths that differ between two versions.
// A path counts as modified only when its captured content changed.
type Comparison struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// Summary is one line of an artifact's version history: enough for a
// history panel without hauling file contents around.
type Summary struct {
	Number       int       `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
	Description  string    `json:"description,omitempty"`
	FileCount    int       `json:"file_count"`
	CommandCount int       `json:"command_count"`
}

// StoreStats reports current table sizes.
type StoreStats struct {
	Artifacts    int `json:"artifacts"`
	Files        int `json:"files"`
	Versions     int `json:"versions"`
	FileVersions int `json:"file_versions"`
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
