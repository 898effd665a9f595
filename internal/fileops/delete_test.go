package fileops

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbout22/repofiles/internal/github"
)

func TestDeleteBatch_DirAndFile(t *testing.T) {
	t.Parallel()

	// Five blobs, three of them under old/.
	engine, provider := newTestEngine(map[string]string{
		"old/a.txt":     "a",
		"old/b.txt":     "b",
		"old/sub/c.txt": "c",
		"readme.md":     "r",
		"keep.txt":      "k",
	})

	items := []Item{
		{Path: "old", Type: TypeDir},
		{Path: "readme.md", Type: TypeFile},
	}

	result, err := engine.DeleteBatch(context.Background(), testRepo, "main", items)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Deleted)

	// The new tree holds exactly the one surviving blob.
	require.Len(t, provider.createdTrees, 1)
	newTree := provider.createdTrees[0]
	require.Len(t, newTree, 1)
	assert.Equal(t, "keep.txt", newTree[0].Path)
	assert.Equal(t, "blob", newTree[0].Type)

	// One commit, parented on the previous tip, and the ref advanced to it.
	require.Len(t, provider.createdCommits, 1)
	assert.Equal(t, []string{"head-1"}, provider.createdCommits[0].parents)
	assert.Equal(t, []string{"newcommit-1"}, provider.refUpdates)
}

func TestDeleteBatch_SelectedFileInsideSelectedDirCountedOnce(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(map[string]string{
		"old/a.txt": "a",
		"keep.txt":  "k",
	})

	items := []Item{
		{Path: "old", Type: TypeDir},
		{Path: "old/a.txt", Type: TypeFile},
	}

	result, err := engine.DeleteBatch(context.Background(), testRepo, "main", items)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
}

func TestDeleteBatch_NothingMatchedSkipsCommit(t *testing.T) {
	t.Parallel()

	engine, provider := newTestEngine(map[string]string{"keep.txt": "k"})

	items := []Item{{Path: "gone.txt", Type: TypeFile}}
	result, err := engine.DeleteBatch(context.Background(), testRepo, "main", items)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Deleted)
	assert.Empty(t, provider.createdTrees, "an identical tree must not be committed")
	assert.Empty(t, provider.createdCommits)
	assert.Empty(t, provider.refUpdates)
}

func TestDeleteBatch_TruncatedTreeRefused(t *testing.T) {
	t.Parallel()

	engine, provider := newTestEngine(map[string]string{"a.txt": "a"})
	provider.truncated = true

	_, err := engine.DeleteBatch(context.Background(), testRepo, "main", []Item{{Path: "a.txt", Type: TypeFile}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
	assert.Empty(t, provider.refUpdates)
}

func TestDeleteBatch_FailuresLeaveRefUntouched(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		failOn string
		step   string
	}{
		{name: "ref resolution", failOn: "GetRef", step: "resolving branch"},
		{name: "commit fetch", failOn: "GetCommit", step: "fetching commit"},
		{name: "tree fetch", failOn: "GetTree", step: "fetching tree"},
		{name: "tree build", failOn: "CreateTree", step: "building tree"},
		{name: "commit create", failOn: "CreateCommit", step: "creating commit"},
		{name: "ref update", failOn: "UpdateRef", step: "updating ref"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engine, provider := newTestEngine(map[string]string{"a.txt": "a", "b.txt": "b"})
			provider.failOn[tc.failOn] = &github.APIError{StatusCode: http.StatusInternalServerError}

			_, err := engine.DeleteBatch(context.Background(), testRepo, "main", []Item{{Path: "a.txt", Type: TypeFile}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.step, "each step fails with its own message")
			assert.Empty(t, provider.refUpdates, "the branch pointer must not move on failure")
			assert.Equal(t, "head-1", provider.headSHA)
		})
	}
}

func TestDeleteBatch_RerunDeletesNothingFurther(t *testing.T) {
	t.Parallel()

	engine, provider := newTestEngine(map[string]string{
		"old/a.txt": "a",
		"keep.txt":  "k",
	})
	items := []Item{{Path: "old", Type: TypeDir}}

	first, err := engine.DeleteBatch(context.Background(), testRepo, "main", items)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Deleted)

	// Simulate the committed state: the blob is gone from the provider.
	delete(provider.files, "old/a.txt")

	second, err := engine.DeleteBatch(context.Background(), testRepo, "main", items)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Deleted)
	assert.Len(t, provider.refUpdates, 1, "the rerun must not commit again")
}

func TestDeleteMessage_ElidesAfterTen(t *testing.T) {
	t.Parallel()

	var items []Item
	for i := 0; i < 13; i++ {
		items = append(items, Item{Path: fmt.Sprintf("f%02d.txt", i), Type: TypeFile})
	}

	msg := deleteMessage(items)
	assert.Contains(t, msg, "f00.txt")
	assert.Contains(t, msg, "f09.txt")
	assert.NotContains(t, msg, "f10.txt")
	assert.Contains(t, msg, "and 3 more")
}

func TestListFilesUnder_FlattensNestedDirectories(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(map[string]string{
		"docs/a.txt":          "a",
		"docs/sub/b.txt":      "b",
		"docs/sub/deep/c.txt": "c",
		"other.txt":           "o",
	})

	blobs := engine.ListFilesUnder(context.Background(), testRepo, "docs", "main")

	paths := make([]string, 0, len(blobs))
	for _, b := range blobs {
		paths = append(paths, b.Path)
	}
	assert.ElementsMatch(t, []string{"docs/a.txt", "docs/sub/b.txt", "docs/sub/deep/c.txt"}, paths)
}

func TestListFilesUnder_FetchFailureYieldsEmpty(t *testing.T) {
	t.Parallel()

	engine, provider := newTestEngine(map[string]string{"docs/a.txt": "a"})
	provider.failOn["GetContents docs"] = &github.APIError{StatusCode: http.StatusForbidden}

	blobs := engine.ListFilesUnder(context.Background(), testRepo, "docs", "main")
	assert.Empty(t, blobs)
}

func TestListFolders_SortedUniqueAndTruncated(t *testing.T) {
	t.Parallel()

	engine, provider := newTestEngine(map[string]string{
		"b/x.txt":     "x",
		"a/y.txt":     "y",
		"a/sub/z.txt": "z",
		"root.txt":    "r",
	})
	provider.truncated = true

	folders, truncated, err := engine.ListFolders(context.Background(), testRepo, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/sub", "b"}, folders)
	assert.True(t, truncated)
}
