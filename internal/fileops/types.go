package fileops

// ItemType distinguishes the two kinds of selectable items.
type ItemType string

const (
	TypeFile ItemType = "file"
	TypeDir  ItemType = "dir"
)

// Item is one selected entry of a batch operation. SHA is the blob
// identifier; required when moving a file, ignored for directories.
type Item struct {
	Path string
	Type ItemType
	SHA  string
}

// Repo is a repository coordinate.
type Repo struct {
	Owner string
	Name  string
}

// MoveStatus is the per-file outcome of a move.
type MoveStatus string

const (
	StatusMoved   MoveStatus = "moved"
	StatusSkipped MoveStatus = "skipped"
)

// MoveDetail records what happened to a single file.
type MoveDetail struct {
	Src    string `json:"src"`
	Dest   string `json:"dest"`
	Status string `json:"status"`
}

// MoveResult aggregates a batch move. When a batch aborts mid-way the
// partial result accompanies the error so callers can see which files
// already moved.
type MoveResult struct {
	Moved   int          `json:"moved"`
	Skipped int          `json:"skipped"`
	Details []MoveDetail `json:"details"`
}

// DeleteResult aggregates a batch delete.
type DeleteResult struct {
	Deleted int `json:"deleted"`
}

// BlobRef is a file discovered by the recursive lister.
type BlobRef struct {
	Path string
	SHA  string
}

// ValidationError is a logical-conflict rejection (illegal destination,
// cycle) raised before any remote mutation. Servers map it to a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
