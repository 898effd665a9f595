package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cbout22/repofiles/internal/auth"
	"github.com/cbout22/repofiles/internal/fileops"
	"github.com/cbout22/repofiles/internal/github"
)

// parseRepo parses an "owner/repo" argument.
func parseRepo(s string) (fileops.Repo, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fileops.Repo{}, fmt.Errorf("invalid repository %q: must be owner/repo", s)
	}
	return fileops.Repo{Owner: parts[0], Name: parts[1]}, nil
}

// newEngine builds a file engine authenticated with the environment
// token. Engine warnings (for example a swallowed directory listing
// failure) go to stderr.
func newEngine() (*fileops.Engine, *github.Client, error) {
	token, err := auth.Token()
	if err != nil {
		return nil, nil, err
	}
	client := github.NewClient(github.DefaultBaseURL, token)
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	return fileops.NewEngine(client, log), client, nil
}
