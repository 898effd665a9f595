package fileops

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cbout22/repofiles/internal/github"
	"github.com/cbout22/repofiles/internal/pathcheck"
)

// MoveOne moves a single blob from src to dest on branch, as a copy
// followed by a delete. The delete never precedes the destination
// write: a failure between the two leaves both copies present, so
// duplication is the failure mode, never loss.
func (e *Engine) MoveOne(ctx context.Context, repo Repo, branch, src, srcSHA, dest string) (MoveStatus, error) {
	if src == dest {
		return StatusSkipped, nil
	}

	srcFile, err := e.provider.GetFile(ctx, repo.Owner, repo.Name, src, branch)
	if err != nil {
		return "", fmt.Errorf("fetching source %s: %w", src, err)
	}
	// The contents API omits the payload for blobs over 1 MB and marks
	// them encoding "none". Writing that empty payload and then deleting
	// the source would destroy the file, so refuse before any mutation.
	if srcFile.Encoding != "base64" {
		return "", fmt.Errorf("source %s has encoding %q, not base64; refusing to move it (files over 1 MB cannot be fetched through the contents API)", src, srcFile.Encoding)
	}
	if srcSHA == "" {
		srcSHA = srcFile.SHA
	}

	// Probe the destination so an overwrite carries the existing blob's
	// SHA; without it GitHub rejects the write as a conflicting create.
	destSHA := ""
	existing, err := e.provider.GetFile(ctx, repo.Owner, repo.Name, dest, branch)
	switch {
	case err == nil:
		destSHA = existing.SHA
	case github.IsNotFound(err):
		// destination is free
	default:
		return "", fmt.Errorf("probing destination %s: %w", dest, err)
	}

	// The contents API wraps base64 at 60 columns; strip the newlines
	// before sending the content back.
	content := strings.ReplaceAll(srcFile.Content, "\n", "")

	put := github.PutFileOptions{
		Message: fmt.Sprintf("Move %s to %s", src, dest),
		Content: content,
		SHA:     destSHA,
		Branch:  branch,
	}
	if err := e.provider.PutFile(ctx, repo.Owner, repo.Name, dest, put); err != nil {
		return "", fmt.Errorf("writing destination %s: %w", dest, err)
	}

	del := github.DeleteFileOptions{
		Message: fmt.Sprintf("Remove %s (moved to %s)", src, dest),
		SHA:     srcSHA,
		Branch:  branch,
	}
	if err := e.provider.DeleteFile(ctx, repo.Owner, repo.Name, src, del); err != nil {
		return "", fmt.Errorf("removing source %s: %w", src, err)
	}

	return StatusMoved, nil
}

// MoveBatch moves every selected item into dest, in selection order.
//
// Directory cycles are rejected up front for the whole selection, so a
// rejected request performs zero remote mutations. After that the batch
// is explicitly partial: an upstream failure aborts the remaining items
// but already-moved blobs stay moved, and the partial MoveResult is
// returned alongside the error.
func (e *Engine) MoveBatch(ctx context.Context, repo Repo, branch string, items []Item, dest string) (*MoveResult, error) {
	dest = pathcheck.Normalize(dest)

	var dirs []string
	for _, it := range items {
		if it.Type == TypeDir {
			dirs = append(dirs, it.Path)
		}
	}
	if check := pathcheck.DirCycle(dest, dirs); check.Invalid {
		return nil, &ValidationError{Reason: check.Reason}
	}

	result := &MoveResult{}
	for _, it := range items {
		src := pathcheck.Normalize(it.Path)

		// Idempotent no-op protection, independent of any pre-check the
		// submitting side may or may not have run.
		if dest == pathcheck.ContainingFolder(src) {
			result.Skipped++
			result.Details = append(result.Details, MoveDetail{
				Src:    src,
				Dest:   src,
				Status: "skipped (same folder)",
			})
			continue
		}

		if it.Type == TypeDir {
			if err := e.moveDirectory(ctx, repo, branch, src, dest, result); err != nil {
				return result, err
			}
			continue
		}

		target := pathcheck.Join(dest, path.Base(src))
		status, err := e.MoveOne(ctx, repo, branch, src, it.SHA, target)
		if err != nil {
			return result, err
		}
		result.record(src, target, status)
	}

	return result, nil
}

// moveDirectory moves every blob under dir into dest/<dirname>/,
// preserving the layout beneath the directory.
func (e *Engine) moveDirectory(ctx context.Context, repo Repo, branch, dir, dest string, result *MoveResult) error {
	blobs := e.ListFilesUnder(ctx, repo, dir, branch)
	targetDir := pathcheck.Join(dest, path.Base(dir))

	for _, blob := range blobs {
		rel := strings.TrimPrefix(blob.Path, dir+"/")
		target := pathcheck.Join(targetDir, rel)

		status, err := e.MoveOne(ctx, repo, branch, blob.Path, blob.SHA, target)
		if err != nil {
			return err
		}
		result.record(blob.Path, target, status)
	}
	return nil
}

// record appends one per-file detail and bumps the matching counter.
func (r *MoveResult) record(src, dest string, status MoveStatus) {
	switch status {
	case StatusMoved:
		r.Moved++
	case StatusSkipped:
		r.Skipped++
	}
	r.Details = append(r.Details, MoveDetail{Src: src, Dest: dest, Status: string(status)})
}
