package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"recordnote/internal/artwork"
	"recordnote/internal/config"
	"recordnote/internal/document"
	"recordnote/internal/logger"
	"recordnote/internal/pipeline"
	"recordnote/internal/provider/discogs"
	"recordnote/internal/tui"
)

func main() {
	var (
		configPath string
		docPath    string
		vaultDir   string
	)

	flag.StringVar(&configPath, "config", "", "Config file path")
	flag.StringVar(&docPath, "doc", "", "Note to write, relative to the vault")
	flag.StringVar(&vaultDir, "vault", "", "Vault directory (overrides vault_dir)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if vaultDir != "" {
		cfg.VaultDir = config.ExpandHome(vaultDir)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; logs only go to the file.
	l := logger.New(cfg.Verbose)
	l.SetQuiet(true)
	logDir := config.DefaultLogPath()
	if err := os.MkdirAll(logDir, 0755); err == nil {
		logPath := filepath.Join(logDir, fmt.Sprintf("recordnote-tui-%d.log", time.Now().Unix()))
		if err := l.SetFileLog(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
		}
	}
	defer l.Close()

	m := tui.NewModel(docPath)
	client := discogs.New(cfg.DiscogsKey, cfg.DiscogsSecret, cfg.UserAgent)
	surface := document.NewFileSurface(cfg.VaultDir, docPath)
	p := pipeline.New(cfg, client, artwork.New(cfg, l), surface, m.Notifier(), l)
	m.Attach(p, l)

	if err := tui.Run(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
