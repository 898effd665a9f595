package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cbout22/repofiles/internal/auth"
	"github.com/cbout22/repofiles/internal/config"
	"github.com/cbout22/repofiles/internal/fileops"
	"github.com/cbout22/repofiles/internal/github"
	"github.com/cbout22/repofiles/internal/server"
)

// newServeCmd creates the `serve` command.
// Usage: repofiles serve [--config repofiles.toml]
func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the repofiles HTTP service",
		Long: `Starts the HTTP API. Callers authenticate with a session token from
the credentials file; each caller may only operate on repositories
they own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigFile, "path to the config file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	store, err := auth.LoadFileStore(cfg.Auth.CredentialsFile)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		log.Warn().Str("file", cfg.Auth.CredentialsFile).Msg("no sessions in credentials file; every request will be rejected")
	}

	services := func(token string) server.FileService {
		client := github.NewClient(cfg.GitHub.BaseURL, token)
		client.SetTimeout(time.Duration(cfg.GitHub.TimeoutSeconds) * time.Second)
		return fileops.NewEngine(client, log)
	}

	srv := server.New(store, services, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Listen)
	}()
	log.Info().Str("listen", cfg.Listen).Msg("repofiles serving")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLogger builds the server logger at the configured level.
func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger(), nil
}
