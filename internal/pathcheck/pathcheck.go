// Package pathcheck holds the path rules shared by every surface that
// accepts a move or delete request. The CLI runs them as an advisory
// pre-check before any network call; the server and the engine run the
// same functions authoritatively. Keeping them in one dependency-free
// package is what makes the two checks provably symmetric.
package pathcheck

import (
	"fmt"
	"path"
	"strings"
)

// Normalize canonicalises a repo-relative path. Surrounding whitespace
// and slashes are stripped and redundant segments collapsed. The empty
// string denotes the repository root.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}

// ValidateRelPath rejects paths that could escape the repository:
// empty paths, absolute paths, and any ".." segment.
func ValidateRelPath(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("path must not be empty")
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("path %q must not start with /", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("path %q must not contain .. segments", p)
		}
	}
	return nil
}

// Result is the outcome of a destination legality check.
type Result struct {
	Invalid bool
	Reason  string
}

// Destination decides whether dest is a legal move target for a
// selection whose directory items are dirPaths and whose current
// containing folder is currentFolder. Rules apply in order:
//
//  1. moving into the folder the selection already lives in is a no-op;
//  2. moving a folder into itself or one of its own descendants would
//     create a cycle.
func Destination(dest, currentFolder string, dirPaths []string) Result {
	dest = Normalize(dest)
	if dest == Normalize(currentFolder) {
		return Result{Invalid: true, Reason: "same as current folder"}
	}
	return DirCycle(dest, dirPaths)
}

// DirCycle checks only the cycle rules: dest must not be a selected
// directory or live underneath one. The engine runs this as its
// authoritative pre-pass; Destination adds the no-op rule on top.
func DirCycle(dest string, dirPaths []string) Result {
	dest = Normalize(dest)
	for _, d := range dirPaths {
		d = Normalize(d)
		if d == "" {
			continue
		}
		if dest == d {
			return Result{Invalid: true, Reason: "cannot move folder into itself"}
		}
		if strings.HasPrefix(dest, d+"/") {
			return Result{Invalid: true, Reason: "cannot move folder into its descendant"}
		}
	}
	return Result{}
}

// ContainingFolder returns the folder holding p, "" for root-level paths.
func ContainingFolder(p string) string {
	p = Normalize(p)
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// Join joins a folder ("" meaning root) with a relative path.
func Join(dir, rel string) string {
	if dir == "" {
		return rel
	}
	return dir + "/" + rel
}
