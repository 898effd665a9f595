// Package auth supplies provider credentials: an environment lookup
// for the CLI and a file-backed session store for the server. The rest
// of the system only ever asks "given a caller, what is their GitHub
// token"; where tokens live is this package's concern alone.
package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// githubTokenEnvVars lists the environment variables checked for a GitHub token,
// in priority order.
var githubTokenEnvVars = []string{
	"GITHUB_TOKEN",
	"GH_TOKEN",
}

// Token returns the GitHub personal access token from the environment.
// It checks GITHUB_TOKEN first, then GH_TOKEN.
func Token() (string, error) {
	for _, env := range githubTokenEnvVars {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf(
		"no GitHub token found: set %s or %s in your environment",
		githubTokenEnvVars[0], githubTokenEnvVars[1],
	)
}

// Identity is an authenticated caller: their GitHub login and the
// token used to act on their behalf.
type Identity struct {
	Login string
	Token string
}

// Store resolves a session token presented by a caller into an Identity.
type Store interface {
	Identify(session string) (*Identity, error)
}

// ErrUnknownSession is returned for session tokens the store does not know.
var ErrUnknownSession = errors.New("unknown session token")

// FileStore is a Store backed by a TOML credentials file:
//
//	[sessions.<session-token>]
//	login = "octocat"
//	github_token = "ghp_..."
type FileStore struct {
	sessions map[string]Identity
}

// fileStoreDoc is the on-disk shape of the credentials file.
type fileStoreDoc struct {
	Sessions map[string]sessionEntry `toml:"sessions"`
}

type sessionEntry struct {
	Login       string `toml:"login"`
	GitHubToken string `toml:"github_token"`
}

// LoadFileStore reads a credentials file. A missing file yields an
// empty store (no caller can authenticate) rather than an error.
func LoadFileStore(path string) (*FileStore, error) {
	store := &FileStore{sessions: make(map[string]Identity)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var doc fileStoreDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}

	for session, entry := range doc.Sessions {
		store.sessions[session] = Identity{Login: entry.Login, Token: entry.GitHubToken}
	}
	return store, nil
}

// Identify implements Store.
func (s *FileStore) Identify(session string) (*Identity, error) {
	id, ok := s.sessions[session]
	if !ok {
		return nil, ErrUnknownSession
	}
	return &id, nil
}

// Len reports how many sessions the store holds.
func (s *FileStore) Len() int {
	return len(s.sessions)
}
