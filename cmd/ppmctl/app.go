package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ppm/internal/apiclient"
	"ppm/internal/config"
	"ppm/internal/logging"
	"ppm/internal/service"
	"ppm/internal/session"
)

// app holds the services one command invocation works with.
type app struct {
	cfg         *config.Config
	sessionID   string
	store       *session.FileStore
	api         *apiclient.Client
	previews    service.PreviewService
	negotiation service.NegotiationService
	viewer      service.ViewerService
	folders     service.FolderService
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logging.Init(cfg.Log, os.Stderr)

	profile, _ := cmd.Flags().GetString("profile")
	path, _ := cmd.Flags().GetString("state-file")
	if path == "" {
		path, err = defaultStatePath(profile)
		if err != nil {
			return nil, err
		}
	}

	store := session.NewFileStore(path)
	api := apiclient.NewClient(&cfg.API)
	previews := service.NewPreviewService(nil, store, &cfg.Preview)

	return &app{
		cfg:         cfg,
		sessionID:   profile,
		store:       store,
		api:         api,
		previews:    previews,
		negotiation: service.NewNegotiationService(api, store),
		viewer:      service.NewViewerService(api, store, previews, cfg.API.PublicAnalysis),
		folders:     service.NewFolderService(api, store),
	}, nil
}

func defaultStatePath(profile string) (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "ppm", profile+".msgpack"), nil
}
