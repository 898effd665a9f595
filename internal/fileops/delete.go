package fileops

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbout22/repofiles/internal/github"
	"github.com/cbout22/repofiles/internal/pathcheck"
)

// maxPathsInMessage caps how many selected paths the delete commit
// message spells out before eliding the rest.
const maxPathsInMessage = 10

// DeleteBatch deletes every selected item by rewriting the branch's
// whole tree and committing the result as a single new revision.
//
// Steps 1-5 (resolve ref, fetch commit, fetch tree, build tree, create
// commit) are pure construction against the existing revision; the
// branch pointer only moves in the final ref update, so the operation
// is all-or-nothing as far as any observer is concerned.
func (e *Engine) DeleteBatch(ctx context.Context, repo Repo, branch string, items []Item) (*DeleteResult, error) {
	tree, headSHA, err := e.fetchTree(ctx, repo, branch)
	if err != nil {
		return nil, err
	}
	if tree.Truncated {
		// A truncated listing rewritten as a new tree would silently
		// drop every unlisted blob.
		return nil, fmt.Errorf("tree listing for %s is truncated, refusing to rewrite it", branch)
	}

	exclude := newExclusionSet(items)

	// The new tree is reconstructed from scratch as a flat blob list,
	// so non-blob entries are dropped rather than carried over.
	var kept []github.TreeEntry
	deleted := 0
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		if exclude.matches(entry.Path) {
			deleted++
			continue
		}
		kept = append(kept, github.TreeEntry{
			Path: entry.Path,
			Mode: entry.Mode,
			Type: entry.Type,
			SHA:  entry.SHA,
		})
	}

	// Nothing matched: the items are already absent. Committing an
	// identical tree would only add noise to the history.
	if deleted == 0 {
		return &DeleteResult{}, nil
	}

	newTree, err := e.provider.CreateTree(ctx, repo.Owner, repo.Name, kept)
	if err != nil {
		return nil, fmt.Errorf("building tree: %w", err)
	}

	commit, err := e.provider.CreateCommit(ctx, repo.Owner, repo.Name, deleteMessage(items), newTree.SHA, []string{headSHA})
	if err != nil {
		return nil, fmt.Errorf("creating commit: %w", err)
	}

	if err := e.provider.UpdateRef(ctx, repo.Owner, repo.Name, branch, commit.SHA); err != nil {
		return nil, fmt.Errorf("updating ref: %w", err)
	}

	return &DeleteResult{Deleted: deleted}, nil
}

// fetchTree resolves branch to its tip commit and returns the full
// recursive tree listing plus the tip commit SHA.
func (e *Engine) fetchTree(ctx context.Context, repo Repo, branch string) (*github.Tree, string, error) {
	ref, err := e.provider.GetRef(ctx, repo.Owner, repo.Name, branch)
	if err != nil {
		return nil, "", fmt.Errorf("resolving branch %s: %w", branch, err)
	}

	commit, err := e.provider.GetCommit(ctx, repo.Owner, repo.Name, ref.Object.SHA)
	if err != nil {
		return nil, "", fmt.Errorf("fetching commit %s: %w", ref.Object.SHA, err)
	}

	tree, err := e.provider.GetTree(ctx, repo.Owner, repo.Name, commit.Tree.SHA, true)
	if err != nil {
		return nil, "", fmt.Errorf("fetching tree: %w", err)
	}
	return tree, ref.Object.SHA, nil
}

// exclusionSet answers whether a blob path is covered by the selection:
// either it is a selected file path, or it falls under a selected
// directory prefix. A selected file inside a selected directory simply
// matches twice; the blob is still only counted once.
type exclusionSet struct {
	files map[string]bool
	dirs  []string
}

func newExclusionSet(items []Item) *exclusionSet {
	set := &exclusionSet{files: make(map[string]bool)}
	for _, it := range items {
		p := pathcheck.Normalize(it.Path)
		if p == "" {
			continue
		}
		if it.Type == TypeDir {
			set.dirs = append(set.dirs, p)
		} else {
			set.files[p] = true
		}
	}
	return set
}

func (s *exclusionSet) matches(p string) bool {
	if s.files[p] {
		return true
	}
	for _, d := range s.dirs {
		if strings.HasPrefix(p, d+"/") {
			return true
		}
	}
	return false
}

// deleteMessage summarizes the selection, spelling out at most
// maxPathsInMessage paths and eliding the rest.
func deleteMessage(items []Item) string {
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, pathcheck.Normalize(it.Path))
	}
	if len(paths) > maxPathsInMessage {
		rest := len(paths) - maxPathsInMessage
		paths = append(paths[:maxPathsInMessage], fmt.Sprintf("and %d more", rest))
	}
	return "Delete " + strings.Join(paths, ", ")
}
