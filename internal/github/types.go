package github

// ContentItem is one entry in a directory listing from the contents API.
type ContentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Type string `json:"type"` // "file" or "dir"
}

// FileContent is a single file fetched from the contents API.
// Content is base64-encoded (wrapped at 60 columns by GitHub).
type FileContent struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// StatInfo describes a path as either a file (with its blob SHA) or a
// directory. Returned by Stat, which probes the contents API.
type StatInfo struct {
	Path string
	SHA  string
	Type string // "file" or "dir"
}

// TreeEntry is one row of a git tree, both when reading an existing
// tree and when submitting a new one.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"` // "blob" or "tree"
	SHA  string `json:"sha,omitempty"`
}

// Tree is a git tree object. Truncated is set when GitHub's recursive
// listing hit its size cap and the entry list is incomplete.
type Tree struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// Ref is a git reference (branch pointer).
type Ref struct {
	Ref    string    `json:"ref"`
	Object RefObject `json:"object"`
}

// RefObject is the object a Ref points at.
type RefObject struct {
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// Commit is a git commit object.
type Commit struct {
	SHA     string         `json:"sha"`
	Tree    CommitTree     `json:"tree"`
	Parents []CommitParent `json:"parents"`
}

// CommitTree identifies the tree a commit snapshots.
type CommitTree struct {
	SHA string `json:"sha"`
}

// CommitParent identifies one parent of a commit.
type CommitParent struct {
	SHA string `json:"sha"`
}

// PutFileOptions is the body of a create-or-update-file call.
// SHA, when set, is the identifier of the blob currently at the path
// and makes the write an explicit overwrite; without it GitHub rejects
// a write over an existing file as a conflicting create.
type PutFileOptions struct {
	Message string `json:"message"`
	Content string `json:"content"` // base64
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

// DeleteFileOptions is the body of a delete-file call. SHA is the
// deletion precondition and is required by GitHub.
type DeleteFileOptions struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch,omitempty"`
}
