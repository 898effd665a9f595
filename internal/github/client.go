// Package github is the REST client for the provider surface the file
// engine consumes: contents, blobs, trees, commits and refs.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// maxReadRetries is how many times an idempotent read is retried after
// the first attempt on a transient failure.
const maxReadRetries = 2

// APIError is a non-success response from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("github: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a GitHub 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the GitHub REST v3 API on behalf of one token.
type Client struct {
	http *resty.Client

	// retryInterval seeds the exponential backoff for read retries;
	// tests shrink it.
	retryInterval time.Duration
}

// NewClient creates a Client against baseURL (DefaultBaseURL in
// production) authenticated with token. An empty token yields an
// unauthenticated client, sufficient for public repositories.
func NewClient(baseURL, token string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetTimeout(30 * time.Second)
	if token != "" {
		r.SetAuthToken(token)
	}
	return &Client{http: r, retryInterval: 500 * time.Millisecond}
}

// SetTimeout overrides the default 30s per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.http.SetTimeout(d)
}

// apiMessage is the error envelope GitHub returns on failures.
type apiMessage struct {
	Message string `json:"message"`
}

// do executes one request and maps non-2xx responses to *APIError.
func (c *Client) do(req *resty.Request, method, url string, out any) error {
	if out != nil {
		req.SetResult(out)
	}
	req.SetError(&apiMessage{})
	resp, err := req.Execute(method, url)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.IsError() {
		msg := ""
		if e, ok := resp.Error().(*apiMessage); ok {
			msg = e.Message
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}

// retryable reports whether a failure is worth retrying: rate limits,
// server-side errors, or transport errors.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}

// get executes an idempotent read with bounded exponential backoff.
// Mutations never go through here: replaying a blob write or delete
// could break the mover's ordering invariant.
func (c *Client) get(ctx context.Context, url string, query map[string]string, out any) error {
	op := func() error {
		req := c.http.R().SetContext(ctx)
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
		err := c.do(req, http.MethodGet, url, out)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxReadRetries), ctx))
}

// GetContents lists one directory level. dir may be "" for the root.
func (c *Client) GetContents(ctx context.Context, owner, repo, dir, ref string) ([]ContentItem, error) {
	var items []ContentItem
	err := c.get(ctx, contentsURL(owner, repo, dir), refQuery(ref), &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetFile fetches a single file with its base64 content.
func (c *Client) GetFile(ctx context.Context, owner, repo, path, ref string) (*FileContent, error) {
	var file FileContent
	if err := c.get(ctx, contentsURL(owner, repo, path), refQuery(ref), &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Stat probes a path and reports whether it is a file or a directory.
// The contents API returns an object for files and an array for
// directories, so the shape of the response is the discriminator.
func (c *Client) Stat(ctx context.Context, owner, repo, path, ref string) (*StatInfo, error) {
	var raw json.RawMessage
	if err := c.get(ctx, contentsURL(owner, repo, path), refQuery(ref), &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return &StatInfo{Path: path, Type: "dir"}, nil
	}
	var file FileContent
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, fmt.Errorf("decoding contents of %s: %w", path, err)
	}
	return &StatInfo{Path: file.Path, SHA: file.SHA, Type: file.Type}, nil
}

// PutFile creates or updates a file (PUT semantics).
func (c *Client) PutFile(ctx context.Context, owner, repo, path string, opts PutFileOptions) error {
	req := c.http.R().SetContext(ctx).SetBody(opts)
	return c.do(req, http.MethodPut, contentsURL(owner, repo, path), nil)
}

// DeleteFile deletes a file; opts.SHA is the required precondition.
func (c *Client) DeleteFile(ctx context.Context, owner, repo, path string, opts DeleteFileOptions) error {
	req := c.http.R().SetContext(ctx).SetBody(opts)
	return c.do(req, http.MethodDelete, contentsURL(owner, repo, path), nil)
}

// GetRef resolves a branch to the commit it points at.
func (c *Client) GetRef(ctx context.Context, owner, repo, branch string) (*Ref, error) {
	var ref Ref
	url := fmt.Sprintf("/repos/%s/%s/git/ref/heads/%s", owner, repo, branch)
	if err := c.get(ctx, url, nil, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetCommit fetches a commit object by SHA.
func (c *Client) GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, error) {
	var commit Commit
	url := fmt.Sprintf("/repos/%s/%s/git/commits/%s", owner, repo, sha)
	if err := c.get(ctx, url, nil, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

// GetTree fetches a tree object, optionally with the full recursive
// blob listing.
func (c *Client) GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*Tree, error) {
	var tree Tree
	url := fmt.Sprintf("/repos/%s/%s/git/trees/%s", owner, repo, sha)
	var query map[string]string
	if recursive {
		query = map[string]string{"recursive": "1"}
	}
	if err := c.get(ctx, url, query, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// CreateTree submits a new tree built from the given entries.
func (c *Client) CreateTree(ctx context.Context, owner, repo string, entries []TreeEntry) (*Tree, error) {
	var tree Tree
	url := fmt.Sprintf("/repos/%s/%s/git/trees", owner, repo)
	body := map[string]any{"tree": entries}
	req := c.http.R().SetContext(ctx).SetBody(body)
	if err := c.do(req, http.MethodPost, url, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// CreateCommit creates a commit pointing at treeSHA with the given parents.
func (c *Client) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (*Commit, error) {
	var commit Commit
	url := fmt.Sprintf("/repos/%s/%s/git/commits", owner, repo)
	body := map[string]any{
		"message": message,
		"tree":    treeSHA,
		"parents": parents,
	}
	req := c.http.R().SetContext(ctx).SetBody(body)
	if err := c.do(req, http.MethodPost, url, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

// UpdateRef advances a branch pointer to sha. GitHub's own
// optimistic-concurrency check on this call is the only guard against
// two batches racing on the same branch.
func (c *Client) UpdateRef(ctx context.Context, owner, repo, branch, sha string) error {
	url := fmt.Sprintf("/repos/%s/%s/git/refs/heads/%s", owner, repo, branch)
	body := map[string]any{"sha": sha}
	req := c.http.R().SetContext(ctx).SetBody(body)
	return c.do(req, http.MethodPatch, url, nil)
}

// AuthenticatedLogin returns the login of the user the token belongs to.
func (c *Client) AuthenticatedLogin(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := c.get(ctx, "/user", nil, &user); err != nil {
		return "", err
	}
	return user.Login, nil
}

func contentsURL(owner, repo, path string) string {
	if path == "" {
		return fmt.Sprintf("/repos/%s/%s/contents", owner, repo)
	}
	return fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
}

func refQuery(ref string) map[string]string {
	if ref == "" {
		return nil
	}
	return map[string]string{"ref": ref}
}
