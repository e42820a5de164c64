package diff_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/forge/internal/diff"
)

func TestCompute_Identical(t *testing.T) {
	t.Parallel()

	d := diff.Compute("file.txt", "a\nb\n", "a\nb\n")
	assert.Equal(t, diff.ModeModified, d.Mode)
	assert.False(t, d.Changed())
	assert.Empty(t, d.Hunks)
	assert.Zero(t, d.Stats.Additions)
	assert.Zero(t, d.Stats.Deletions)
	assert.Equal(t, "--- a/file.txt\n+++ b/file.txt\n", d.Unified())
	assert.Equal(t, "Modified", d.Summary())
}

func TestCompute_BothEmpty(t *testing.T) {
	t.Parallel()

	d := diff.Compute("file.txt", "", "")
	assert.False(t, d.Changed())
	assert.Empty(t, d.Hunks)
}

func TestCompute_NewFile(t *testing.T) {
	t.Parallel()

	d := diff.Compute("file.txt", "", "hello\nworld\n")
	assert.Equal(t, diff.ModeNew, d.Mode)
	assert.True(t, d.Changed())
	assert.Equal(t, 2, d.Stats.Additions)
	assert.Zero(t, d.Stats.Deletions)
	assert.Equal(t, "New file +2", d.Summary())

	want := "--- a/file.txt\n" +
		"+++ b/file.txt\n" +
		"@@ -0,0 +1,2 @@\n" +
		"+hello\n" +
		"+world\n"
	assert.Equal(t, want, d.Unified())
}

func TestCompute_DeletedFile(t *testing.T) {
	t.Parallel()

	d := diff.Compute("file.txt", "only line\n", "")
	assert.Equal(t, diff.ModeDeleted, d.Mode)
	assert.Equal(t, 1, d.Stats.Deletions)
	assert.Equal(t, "File deleted -1", d.Summary())

	want := "--- a/file.txt\n" +
		"+++ b/file.txt\n" +
		"@@ -1,1 +0,0 @@\n" +
		"-only line\n"
	assert.Equal(t, want, d.Unified())
}

func TestCompute_ModifiedLine(t *testing.T) {
	t.Parallel()

	oldContent := "one\ntwo\nthree\nfour\nfive\n"
	newContent := "one\ntwo\nTHREE\nfour\nfive\n"

	d := diff.Compute("file.txt", oldContent, newContent)
	assert.Equal(t, 1, d.Stats.Additions)
	assert.Equal(t, 1, d.Stats.Deletions)
	assert.Equal(t, "Modified +1 -1", d.Summary())

	require.Len(t, d.Hunks, 1)
	hunk := d.Hunks[0]
	assert.Equal(t, 1, hunk.OldStart)
	assert.Equal(t, 5, hunk.OldCount)
	assert.Equal(t, 1, hunk.NewStart)
	assert.Equal(t, 5, hunk.NewCount)

	want := "--- a/file.txt\n" +
		"+++ b/file.txt\n" +
		"@@ -1,5 +1,5 @@\n" +
		" one\n" +
		" two\n" +
		"-three\n" +
		"+THREE\n" +
		" four\n" +
		" five\n"
	assert.Equal(t, want, d.Unified())
}

func TestCompute_InsertionInMiddle(t *testing.T) {
	t.Parallel()

	d := diff.Compute("file.txt", "a\nc\n", "a\nb\nc\n")
	assert.Equal(t, 1, d.Stats.Additions)
	assert.Zero(t, d.Stats.Deletions)

	require.Len(t, d.Hunks, 1)
	hunk := d.Hunks[0]
	assert.Equal(t, 1, hunk.OldStart)
	assert.Equal(t, 2, hunk.OldCount)
	assert.Equal(t, 1, hunk.NewStart)
	assert.Equal(t, 3, hunk.NewCount)
}

func TestCompute_DistantChangesSplitIntoHunks(t *testing.T) {
	t.Parallel()

	var oldLines, newLines []string
	for i := 1; i <= 20; i++ {
		line := fmt.Sprintf("l%d", i)
		oldLines = append(oldLines, line)
		if i == 2 || i == 18 {
			newLines = append(newLines, strings.ToUpper(line))
		} else {
			newLines = append(newLines, line)
		}
	}

	d := diff.Compute("file.txt",
		strings.Join(oldLines, "\n")+"\n",
		strings.Join(newLines, "\n")+"\n")

	assert.Equal(t, 2, d.Stats.Additions)
	assert.Equal(t, 2, d.Stats.Deletions)

	require.Len(t, d.Hunks, 2)
	assert.Equal(t, 1, d.Hunks[0].OldStart)
	assert.Equal(t, 5, d.Hunks[0].OldCount)
	assert.Equal(t, 15, d.Hunks[1].OldStart)
	assert.Equal(t, 6, d.Hunks[1].OldCount)
}

func TestCompute_NearbyChangesShareHunk(t *testing.T) {
	t.Parallel()

	// Two changes four lines apart fit inside one hunk's context window
	oldContent := "a\nb\nc\nd\ne\nf\ng\n"
	newContent := "A\nb\nc\nd\ne\nF\ng\n"

	d := diff.Compute("file.txt", oldContent, newContent)
	require.Len(t, d.Hunks, 1)
	assert.Equal(t, 7, d.Hunks[0].OldCount)
}

func TestCompute_TrailingNewlineInsensitive(t *testing.T) {
	t.Parallel()

	// Line-based comparison: a missing final newline is not a change
	d := diff.Compute("file.txt", "a\nb", "a\nb\n")
	assert.False(t, d.Changed())
}

func TestCompute_LineNumbers(t *testing.T) {
	t.Parallel()

	d := diff.Compute("file.txt", "keep\nold\n", "keep\nnew\n")
	require.Len(t, d.Hunks, 1)

	lines := d.Hunks[0].Lines
	require.Len(t, lines, 3)

	assert.Equal(t, diff.LineContext, lines[0].Type)
	assert.Equal(t, 1, lines[0].OldNumber)
	assert.Equal(t, 1, lines[0].NewNumber)

	assert.Equal(t, diff.LineRemoved, lines[1].Type)
	assert.Equal(t, 2, lines[1].OldNumber)
	assert.Zero(t, lines[1].NewNumber)

	assert.Equal(t, diff.LineAdded, lines[2].Type)
	assert.Zero(t, lines[2].OldNumber)
	assert.Equal(t, 2, lines[2].NewNumber)
}

func TestLineType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "context", diff.LineContext.String())
	assert.Equal(t, "added", diff.LineAdded.String())
	assert.Equal(t, "removed", diff.LineRemoved.String())
	assert.Equal(t, "unknown", diff.LineType(99).String())
}
