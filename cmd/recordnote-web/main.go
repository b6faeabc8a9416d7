package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"recordnote/internal/artwork"
	"recordnote/internal/config"
	"recordnote/internal/logger"
	"recordnote/internal/provider/discogs"
	"recordnote/internal/shutdown"
	"recordnote/internal/web"
)

func main() {
	var (
		port       int
		configPath string
		vaultDir   string
	)

	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&configPath, "config", "", "Config file path")
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

	// Setup logger with file logging
	l := logger.New(cfg.Verbose)
	logDir := config.DefaultLogPath()
	if err := os.MkdirAll(logDir, 0755); err == nil {
		logPath := filepath.Join(logDir, fmt.Sprintf("recordnote-web-%d.log", time.Now().Unix()))
		if err := l.SetFileLog(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
		}
	}
	defer l.Close()

	sh := shutdown.New()
	sh.Listen(func(sig os.Signal) {
		l.Info("Received %s, shutting down...", sig)
	})

	runMgr := web.NewRunManager()
	runMgr.StartCleanup(sh.Context())

	client := discogs.New(cfg.DiscogsKey, cfg.DiscogsSecret, cfg.UserAgent)
	server := web.NewServer(sh.Context(), runMgr, cfg, client, artwork.New(cfg, l), l)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sh.AddCleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			l.Error("Server shutdown error: %v", err)
		}
	})

	l.Info("Starting web server on port %d (vault: %s)", port, cfg.VaultDir)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("Server error: %v", err)
		os.Exit(1)
	}

	<-sh.Context().Done()
	l.Info("Server stopped")
}
