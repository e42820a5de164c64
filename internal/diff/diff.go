// Package diff computes line-based diffs between two file snapshots.
//
// The algorithm is a plain longest-common-subsequence walk, which is
// enough for the file sizes the version store deals in. Output is
// grouped into hunks with three lines of context and can be rendered
// in unified format for diff viewers.
package diff

import (
	"fmt"
	"slices"
	"strings"
)

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

// LineType classifies a single diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// String returns the name of the line type.
func (t LineType) String() string {
	switch t {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// prefix returns the unified-diff marker for this line type.
func (t LineType) prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// Line is a single line of a diff.
// OldNumber is 0 for added lines, NewNumber is 0 for removed lines.
type Line struct {
	Type      LineType
	Content   string
	OldNumber int
	NewNumber int
}

// Hunk is a contiguous run of changes plus surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Mode describes what happened to the file as a whole.
type Mode string

const (
	ModeNew      Mode = "new"
	ModeModified Mode = "modified"
	ModeDeleted  Mode = "deleted"
)

// Stats counts the changed lines of a diff.
type Stats struct {
	Additions int
	Deletions int
}

// Diff is a complete file diff.
type Diff struct {
	Path  string
	Mode  Mode
	Hunks []Hunk
	Stats Stats
}

// Compute diffs two versions of a file's content.
func Compute(path, oldContent, newContent string) *Diff {
	d := &Diff{Path: path, Mode: ModeModified}
	switch {
	case oldContent == "" && newContent != "":
		d.Mode = ModeNew
	case oldContent != "" && newContent == "":
		d.Mode = ModeDeleted
	}

	lines := compareLines(splitLines(oldContent), splitLines(newContent))
	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			d.Stats.Additions++
		case LineRemoved:
			d.Stats.Deletions++
		}
	}
	d.Hunks = groupHunks(lines)
	return d
}

// Changed reports whether the two contents differ at all.
func (d *Diff) Changed() bool {
	return d.Stats.Additions > 0 || d.Stats.Deletions > 0
}

// Summary returns a one-line description such as "Modified +4 -1".
func (d *Diff) Summary() string {
	var parts []string
	switch d.Mode {
	case ModeNew:
		parts = append(parts, "New file")
	case ModeDeleted:
		parts = append(parts, "File deleted")
	default:
		parts = append(parts, "Modified")
	}
	if d.Stats.Additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Additions))
	}
	if d.Stats.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deletions))
	}
	return strings.Join(parts, " ")
}

// Unified renders the diff in standard unified format.
func (d *Diff) Unified() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "--- a/%s\n", d.Path)
	fmt.Fprintf(&sb, "+++ b/%s\n", d.Path)

	for _, hunk := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldCount,
			hunk.NewStart, hunk.NewCount)
		for _, line := range hunk.Lines {
			sb.WriteString(line.Type.prefix())
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// splitLines splits content on newlines, dropping the empty trailing
// element a final newline produces.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// compareLines walks both files against their longest common subsequence
// and emits one Line per input line.
func compareLines(oldLines, newLines []string) []Line {
	var result []Line

	if len(oldLines) == 0 && len(newLines) == 0 {
		return result
	}
	if len(oldLines) == 0 {
		for i, line := range newLines {
			result = append(result, Line{Type: LineAdded, Content: line, NewNumber: i + 1})
		}
		return result
	}
	if len(newLines) == 0 {
		for i, line := range oldLines {
			result = append(result, Line{Type: LineRemoved, Content: line, OldNumber: i + 1})
		}
		return result
	}

	lcs := longestCommonSubsequence(oldLines, newLines)

	var oldIdx, newIdx, lcsIdx int
	for oldIdx < len(oldLines) || newIdx < len(newLines) {
		switch {
		case lcsIdx < len(lcs) &&
			oldIdx < len(oldLines) && newIdx < len(newLines) &&
			oldLines[oldIdx] == lcs[lcsIdx] && newLines[newIdx] == lcs[lcsIdx]:
			result = append(result, Line{
				Type:      LineContext,
				Content:   oldLines[oldIdx],
				OldNumber: oldIdx + 1,
				NewNumber: newIdx + 1,
			})
			oldIdx++
			newIdx++
			lcsIdx++
		case oldIdx < len(oldLines) && (lcsIdx >= len(lcs) || oldLines[oldIdx] != lcs[lcsIdx]):
			result = append(result, Line{
				Type:      LineRemoved,
				Content:   oldLines[oldIdx],
				OldNumber: oldIdx + 1,
			})
			oldIdx++
		default:
			result = append(result, Line{
				Type:      LineAdded,
				Content:   newLines[newIdx],
				NewNumber: newIdx + 1,
			})
			newIdx++
		}
	}
	return result
}

// longestCommonSubsequence returns the LCS of two line slices via the
// classic dynamic-programming table.
func longestCommonSubsequence(a, b []string) []string {
	m, n := len(a), len(b)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	var lcs []string
	for i, j := m, n; i > 0 && j > 0; {
		switch {
		case a[i-1] == b[j-1]:
			lcs = append(lcs, a[i-1])
			i--
			j--
		case dp[i-1][j] > dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	slices.Reverse(lcs)
	return lcs
}

// groupHunks splits the line list into hunks. Changes separated by more
// than 2*contextLines unchanged lines go into separate hunks; each hunk
// carries up to contextLines of context on both sides.
func groupHunks(lines []Line) []Hunk {
	var changeIdx []int
	for i, line := range lines {
		if line.Type != LineContext {
			changeIdx = append(changeIdx, i)
		}
	}
	if len(changeIdx) == 0 {
		return nil
	}

	var hunks []Hunk
	groupStart := changeIdx[0]
	prev := changeIdx[0]
	for _, idx := range changeIdx[1:] {
		if idx-prev-1 > 2*contextLines {
			hunks = append(hunks, buildHunk(lines, groupStart, prev))
			groupStart = idx
		}
		prev = idx
	}
	hunks = append(hunks, buildHunk(lines, groupStart, prev))
	return hunks
}

// buildHunk assembles one hunk for the changes between indices first and
// last, padded with context.
func buildHunk(lines []Line, first, last int) Hunk {
	start := max(0, first-contextLines)
	end := min(len(lines)-1, last+contextLines)

	var h Hunk
	for i := start; i <= end; i++ {
		line := lines[i]
		h.Lines = append(h.Lines, line)
		if line.OldNumber > 0 {
			h.OldCount++
			if h.OldStart == 0 {
				h.OldStart = line.OldNumber
			}
		}
		if line.NewNumber > 0 {
			h.NewCount++
			if h.NewStart == 0 {
				h.NewStart = line.NewNumber
			}
		}
	}
	return h
}
