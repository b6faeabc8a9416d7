package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"recordnote/internal/config"
	"recordnote/internal/render"
)

var (
	errHelp       = errors.New("help requested")
	errInitConfig = errors.New("init config requested")
)

type mode int

const (
	modeURL mode = iota
	modeSearch
	modeClipboard
)

type options struct {
	cfg        config.Settings
	configPath string
	mode       mode
	input      string // release URL or search query; empty means prompt
	document   string // vault-relative; empty prints to stdout
}

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > environment > config file > defaults
func parseArgs(args []string) (options, error) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return options{}, errHelp
		}
		if arg == "--init-config" {
			return options{}, errInitConfig
		}
	}

	var opts options

	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return options{}, fmt.Errorf("--config requires a path argument")
			}
			opts.configPath = args[i+1]
			break
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return options{}, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.configPath == "" {
		opts.configPath = config.FindConfigFile()
	}

	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--search", "-s":
			opts.mode = modeSearch

		case "--clipboard", "-p":
			opts.mode = modeClipboard

		case "--doc", "-d":
			if i+1 >= len(args) {
				return options{}, fmt.Errorf("--doc requires a path argument")
			}
			i++
			opts.document = args[i]

		case "--vault":
			if i+1 >= len(args) {
				return options{}, fmt.Errorf("--vault requires a directory argument")
			}
			i++
			cfg.VaultDir = config.ExpandHome(args[i])

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return options{}, fmt.Errorf("unknown flag: %s", arg)
			}
			positional = append(positional, arg)
		}
	}

	switch {
	case opts.mode == modeClipboard && len(positional) > 0:
		return options{}, fmt.Errorf("--clipboard takes no arguments")
	case opts.mode == modeURL && len(positional) > 1:
		return options{}, fmt.Errorf("expected a single release URL, got %d arguments", len(positional))
	}
	opts.input = strings.Join(positional, " ")
	opts.cfg = cfg

	return opts, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.DefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		return nil
	}

	if err := config.Save(config.DefaultSettings(), path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  vault_dir: folder notes and artwork are stored under")
	fmt.Println("  artwork_folder: artwork location relative to vault_dir (default: music/artwork)")
	fmt.Println("  template / template_file: note template using these placeholders:")
	for _, line := range placeholderLines(4, 80) {
		fmt.Println(line)
	}
	fmt.Println("  discogs_key, discogs_secret: Discogs API credentials (required for search)")
	fmt.Println("  artwork_max_size: downscale artwork to this many pixels (0 keeps the original)")
	fmt.Println("  verbose: true/false (enable detailed logging)")

	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("recordnote - Turn Discogs releases into markdown notes")
	fmt.Println()
	fmt.Println("Usage: recordnote [options] [<release_url>]")
	fmt.Println("       recordnote [options] --search [<query>]")
	fmt.Println("       recordnote [options] --clipboard")
	fmt.Println()
	fmt.Println("Without a URL or query you are prompted for one.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -d, --doc <path>           Note to write, relative to the vault (default: print to stdout)")
	fmt.Println("  -s, --search               Search Discogs by text and pick a release")
	fmt.Println("  -p, --clipboard            Use the release URL in the clipboard")
	fmt.Println("      --vault <dir>          Vault directory (overrides vault_dir)")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./recordnote.yaml")
	fmt.Println("  ~/.config/recordnote/config.yaml")
	fmt.Println("  ~/.recordnote.yaml")
	fmt.Println()
	fmt.Println("Credentials can also be set with DISCOGS_KEY and DISCOGS_SECRET (or a .env file).")
	fmt.Println()
	fmt.Println("Template placeholders:")
	for _, line := range placeholderLines(2, 80) {
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Println("  Normal mode: Stage progress shown, detailed logs saved to:")
	fmt.Println("    ~/.local/share/recordnote/logs/")
	fmt.Println("  Verbose mode: All output to stderr, no progress line, no file logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Print the note for a release")
	fmt.Println("  recordnote https://www.discogs.com/release/12345-Pink-Floyd-Animals")
	fmt.Println()
	fmt.Println("  # Write it into the vault")
	fmt.Println("  recordnote -d music/Animals.md https://www.discogs.com/release/12345")
	fmt.Println()
	fmt.Println("  # Search and pick a result")
	fmt.Println("  recordnote -d music/Animals.md --search pink floyd animals")
}

// placeholderLines lists the template placeholders, indented and wrapped to
// width columns.
func placeholderLines(indent, width int) []string {
	prefix := strings.Repeat(" ", indent)

	var lines []string
	line := prefix
	for _, token := range render.Placeholders() {
		if line != prefix && len(line)+1+len(token) > width {
			lines = append(lines, line)
			line = prefix
		}
		if line != prefix {
			line += " "
		}
		line += token
	}
	if line != prefix {
		lines = append(lines, line)
	}
	return lines
}
