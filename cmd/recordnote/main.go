package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"recordnote/internal/artwork"
	"recordnote/internal/command"
	"recordnote/internal/config"
	"recordnote/internal/document"
	"recordnote/internal/logger"
	"recordnote/internal/pipeline"
	"recordnote/internal/progress"
	"recordnote/internal/provider/discogs"
	"recordnote/internal/shutdown"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	switch {
	case errors.Is(err, errHelp):
		printUsage()
		return
	case errors.Is(err, errInitConfig):
		if err := initConfigFile(); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	cfg := opts.cfg

	sh := shutdown.New()
	sh.Listen(nil)

	// Stdout may carry the rendered note, so the console log goes to stderr.
	log := logger.New(cfg.Verbose)
	log.SetOutput(os.Stderr)
	defer log.Close()

	if !cfg.Verbose {
		logDir := config.DefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("recordnote_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if cfg.Verbose && opts.configPath != "" {
		log.Debug("Loaded configuration from: %s", opts.configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	err = run(sh.Context(), opts, log)
	sh.Shutdown()

	switch {
	case errors.Is(err, command.ErrCancelled):
		fmt.Fprintln(os.Stderr, "Cancelled")
	case errors.Is(err, command.ErrClipboard):
		log.Error("%v", err)
		os.Exit(1)
	case err != nil:
		// The pipeline already reported it.
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *logger.Logger) error {
	cfg := opts.cfg

	var surface document.Surface
	if opts.document != "" {
		surface = document.NewFileSurface(cfg.VaultDir, opts.document)
	} else {
		surface = document.NewWriterSurface(os.Stdout)
	}

	client := discogs.New(cfg.DiscogsKey, cfg.DiscogsSecret, cfg.UserAgent)
	if !cfg.HasCredentials() {
		log.Debug("No Discogs credentials configured, lookups are anonymous")
	}

	notifier := pipeline.NotifierFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	})
	p := pipeline.New(cfg, client, artwork.New(cfg, log), surface, notifier, log)

	if !cfg.Verbose {
		bar := progress.New(len(pipeline.Steps))
		p.Hooks.OnState = func(s pipeline.State) {
			switch {
			case s == pipeline.StateIdle:
				log.SetQuiet(true)
			case s == pipeline.StateDelivered:
				bar.Finish(s.Label())
			case s == pipeline.StateFailed:
				bar.Fail(s.Label())
			default:
				bar.Step(s.Label())
			}
		}
		defer log.SetQuiet(false)
	}

	cmds := command.New(p, newPrompter(), log)

	var err error
	switch {
	case opts.mode == modeClipboard:
		_, err = cmds.FromClipboard(ctx)
	case opts.mode == modeSearch && opts.input != "":
		_, err = cmds.SearchFor(ctx, opts.input)
	case opts.mode == modeSearch:
		_, err = cmds.SearchByText(ctx)
	case opts.input != "":
		_, err = p.Run(ctx, opts.input)
	default:
		_, err = cmds.EnterURL(ctx)
	}
	return err
}

// newPrompter uses arrow-key prompts on a terminal and plain lines when
// stdin is piped.
func newPrompter() command.Prompter {
	if isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd()) {
		return command.NewSurveyPrompter(os.Stdin, os.Stderr, os.Stderr)
	}
	return command.NewLinePrompter(os.Stdin, os.Stderr)
}
