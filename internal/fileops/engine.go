// Package fileops implements the file management core: the recursive
// directory lister, the single-item mover, the batch mover and the
// batch deleter. Move is copy-then-delete per blob and therefore only
// best-effort across files; delete rewrites the whole tree into one
// commit and is atomic. The asymmetry is deliberate: GitHub exposes no
// rename or batch-delete primitive, and pretending both sides have the
// same guarantees would misstate what callers can rely on.
package fileops

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cbout22/repofiles/internal/github"
)

// Provider is the slice of the GitHub API the engine consumes.
// *github.Client satisfies it; tests substitute an in-memory fake.
type Provider interface {
	GetContents(ctx context.Context, owner, repo, dir, ref string) ([]github.ContentItem, error)
	GetFile(ctx context.Context, owner, repo, path, ref string) (*github.FileContent, error)
	PutFile(ctx context.Context, owner, repo, path string, opts github.PutFileOptions) error
	DeleteFile(ctx context.Context, owner, repo, path string, opts github.DeleteFileOptions) error
	GetRef(ctx context.Context, owner, repo, branch string) (*github.Ref, error)
	GetCommit(ctx context.Context, owner, repo, sha string) (*github.Commit, error)
	GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*github.Tree, error)
	CreateTree(ctx context.Context, owner, repo string, entries []github.TreeEntry) (*github.Tree, error)
	CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (*github.Commit, error)
	UpdateRef(ctx context.Context, owner, repo, branch, sha string) error
}

// Engine orchestrates file operations against one Provider. It holds
// no state between calls; every batch operates on its own snapshot of
// the remote tree and commit graph.
type Engine struct {
	provider Provider
	log      zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(p Provider, log zerolog.Logger) *Engine {
	return &Engine{provider: p, log: log}
}

// ListFilesUnder enumerates every blob beneath dir at ref, one
// directory level per call, recursing into nested directories.
//
// A failed directory fetch yields an empty slice rather than an error;
// callers treat it as "nothing to move". That downgrade means a
// rate-limited or partially-permitted listing can make a directory
// move silently move zero files, so the failure is at least logged.
func (e *Engine) ListFilesUnder(ctx context.Context, repo Repo, dir, ref string) []BlobRef {
	entries, err := e.provider.GetContents(ctx, repo.Owner, repo.Name, dir, ref)
	if err != nil {
		e.log.Warn().Err(err).Str("dir", dir).Msg("directory listing failed; treating as empty")
		return nil
	}

	var blobs []BlobRef
	for _, entry := range entries {
		switch entry.Type {
		case "dir":
			blobs = append(blobs, e.ListFilesUnder(ctx, repo, entry.Path, ref)...)
		case "file":
			blobs = append(blobs, BlobRef{Path: entry.Path, SHA: entry.SHA})
		}
	}
	return blobs
}

// ListFolders returns the sorted unique directory paths at branch,
// plus whether the provider truncated the listing (meaning the folder
// list may be incomplete).
func (e *Engine) ListFolders(ctx context.Context, repo Repo, branch string) ([]string, bool, error) {
	tree, _, err := e.fetchTree(ctx, repo, branch)
	if err != nil {
		return nil, false, err
	}

	folders := make([]string, 0, len(tree.Tree))
	for _, entry := range tree.Tree {
		if entry.Type == "tree" {
			folders = append(folders, entry.Path)
		}
	}
	sort.Strings(folders)
	return folders, tree.Truncated, nil
}
