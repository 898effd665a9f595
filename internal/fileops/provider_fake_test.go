package fileops

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cbout22/repofiles/internal/github"
)

// fakeProvider is an in-memory GitHub: a map of blob paths to content,
// plus a recorded call log so tests can assert "zero remote calls" and
// call ordering. Mutations behave like the real API: puts over an
// existing blob demand its SHA, deletes demand the source SHA.
type fakeProvider struct {
	files map[string]fakeFile

	headSHA string
	treeSHA string
	// truncated marks the recursive tree listing as incomplete.
	truncated bool
	// oversize marks blobs over the contents API's 1 MB cap: GetFile
	// serves them with an empty payload and encoding "none".
	oversize map[string]bool

	// failOn maps a method name (optionally "Method path") to a forced error.
	failOn map[string]error

	calls          []string
	puts           []recordedPut
	createdTrees   [][]github.TreeEntry
	createdCommits []recordedCommit
	refUpdates     []string
}

type fakeFile struct {
	sha     string
	content string // plain text; base64 happens at the API boundary
}

type recordedPut struct {
	path string
	opts github.PutFileOptions
}

type recordedCommit struct {
	message string
	tree    string
	parents []string
}

func newFakeProvider(files map[string]string) *fakeProvider {
	p := &fakeProvider{
		files:    make(map[string]fakeFile),
		headSHA:  "head-1",
		treeSHA:  "tree-1",
		failOn:   make(map[string]error),
		oversize: make(map[string]bool),
	}
	for path, content := range files {
		p.files[path] = fakeFile{sha: "sha-" + path, content: content}
	}
	return p
}

func (p *fakeProvider) fail(method, path string) error {
	if err, ok := p.failOn[method+" "+path]; ok {
		return err
	}
	if err, ok := p.failOn[method]; ok {
		return err
	}
	return nil
}

func (p *fakeProvider) record(method string) {
	p.calls = append(p.calls, method)
}

func notFound() error {
	return &github.APIError{StatusCode: http.StatusNotFound, Message: "Not Found"}
}

func (p *fakeProvider) GetContents(ctx context.Context, owner, repo, dir, ref string) ([]github.ContentItem, error) {
	p.record("GetContents " + dir)
	if err := p.fail("GetContents", dir); err != nil {
		return nil, err
	}

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seenDirs := make(map[string]bool)
	var items []github.ContentItem
	for path, file := range p.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			sub := rest[:i]
			if !seenDirs[sub] {
				seenDirs[sub] = true
				items = append(items, github.ContentItem{
					Name: sub,
					Path: prefix + sub,
					Type: "dir",
				})
			}
			continue
		}
		items = append(items, github.ContentItem{
			Name: rest,
			Path: path,
			SHA:  file.sha,
			Type: "file",
		})
	}
	if len(items) == 0 {
		return nil, notFound()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

func (p *fakeProvider) GetFile(ctx context.Context, owner, repo, path, ref string) (*github.FileContent, error) {
	p.record("GetFile " + path)
	if err := p.fail("GetFile", path); err != nil {
		return nil, err
	}
	file, ok := p.files[path]
	if !ok {
		return nil, notFound()
	}
	if p.oversize[path] {
		return &github.FileContent{
			Path:     path,
			SHA:      file.sha,
			Type:     "file",
			Content:  "",
			Encoding: "none",
		}, nil
	}
	return &github.FileContent{
		Path:     path,
		SHA:      file.sha,
		Type:     "file",
		Content:  base64.StdEncoding.EncodeToString([]byte(file.content)),
		Encoding: "base64",
	}, nil
}

func (p *fakeProvider) PutFile(ctx context.Context, owner, repo, path string, opts github.PutFileOptions) error {
	p.record("PutFile " + path)
	if err := p.fail("PutFile", path); err != nil {
		return err
	}

	existing, exists := p.files[path]
	if exists && opts.SHA == "" {
		return &github.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "sha required to update " + path}
	}
	if exists && opts.SHA != existing.sha {
		return &github.APIError{StatusCode: http.StatusConflict, Message: "sha mismatch for " + path}
	}

	content, err := base64.StdEncoding.DecodeString(opts.Content)
	if err != nil {
		return fmt.Errorf("bad base64 for %s: %w", path, err)
	}

	p.puts = append(p.puts, recordedPut{path: path, opts: opts})
	p.files[path] = fakeFile{sha: "sha-" + path + "-v2", content: string(content)}
	return nil
}

func (p *fakeProvider) DeleteFile(ctx context.Context, owner, repo, path string, opts github.DeleteFileOptions) error {
	p.record("DeleteFile " + path)
	if err := p.fail("DeleteFile", path); err != nil {
		return err
	}
	existing, ok := p.files[path]
	if !ok {
		return notFound()
	}
	if opts.SHA != existing.sha {
		return &github.APIError{StatusCode: http.StatusConflict, Message: "sha mismatch for " + path}
	}
	delete(p.files, path)
	return nil
}

func (p *fakeProvider) GetRef(ctx context.Context, owner, repo, branch string) (*github.Ref, error) {
	p.record("GetRef " + branch)
	if err := p.fail("GetRef", branch); err != nil {
		return nil, err
	}
	return &github.Ref{
		Ref:    "refs/heads/" + branch,
		Object: github.RefObject{Type: "commit", SHA: p.headSHA},
	}, nil
}

func (p *fakeProvider) GetCommit(ctx context.Context, owner, repo, sha string) (*github.Commit, error) {
	p.record("GetCommit " + sha)
	if err := p.fail("GetCommit", sha); err != nil {
		return nil, err
	}
	return &github.Commit{SHA: sha, Tree: github.CommitTree{SHA: p.treeSHA}}, nil
}

func (p *fakeProvider) GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*github.Tree, error) {
	p.record("GetTree " + sha)
	if err := p.fail("GetTree", sha); err != nil {
		return nil, err
	}

	seenDirs := make(map[string]bool)
	var entries []github.TreeEntry
	for path, file := range p.files {
		parts := strings.Split(path, "/")
		for i := 1; i < len(parts); i++ {
			dir := strings.Join(parts[:i], "/")
			if !seenDirs[dir] {
				seenDirs[dir] = true
				entries = append(entries, github.TreeEntry{Path: dir, Mode: "040000", Type: "tree"})
			}
		}
		entries = append(entries, github.TreeEntry{Path: path, Mode: "100644", Type: "blob", SHA: file.sha})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return &github.Tree{SHA: sha, Tree: entries, Truncated: p.truncated}, nil
}

func (p *fakeProvider) CreateTree(ctx context.Context, owner, repo string, entries []github.TreeEntry) (*github.Tree, error) {
	p.record("CreateTree")
	if err := p.fail("CreateTree", ""); err != nil {
		return nil, err
	}
	p.createdTrees = append(p.createdTrees, entries)
	return &github.Tree{SHA: fmt.Sprintf("newtree-%d", len(p.createdTrees))}, nil
}

func (p *fakeProvider) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (*github.Commit, error) {
	p.record("CreateCommit")
	if err := p.fail("CreateCommit", ""); err != nil {
		return nil, err
	}
	p.createdCommits = append(p.createdCommits, recordedCommit{message: message, tree: treeSHA, parents: parents})
	return &github.Commit{SHA: fmt.Sprintf("newcommit-%d", len(p.createdCommits))}, nil
}

func (p *fakeProvider) UpdateRef(ctx context.Context, owner, repo, branch, sha string) error {
	p.record("UpdateRef " + branch)
	if err := p.fail("UpdateRef", branch); err != nil {
		return err
	}
	p.refUpdates = append(p.refUpdates, sha)
	p.headSHA = sha
	return nil
}
