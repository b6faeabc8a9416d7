package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"recordnote/internal/render"
)

// Settings contains the program configuration. It is loaded once at startup
// and passed explicitly to each component.
type Settings struct {
	VaultDir       string `yaml:"vault_dir"`
	ArtworkFolder  string `yaml:"artwork_folder"`
	Template       string `yaml:"template"`
	TemplateFile   string `yaml:"template_file,omitempty"`
	DiscogsKey     string `yaml:"discogs_key"`
	DiscogsSecret  string `yaml:"discogs_secret"`
	UserAgent      string `yaml:"user_agent"`
	ArtworkMaxSize int    `yaml:"artwork_max_size"`
	Verbose        bool   `yaml:"verbose"`
}

const (
	DefaultArtworkFolder = "music/artwork"
	DefaultUserAgent     = "recordnote/1.0"

	envKey    = "DISCOGS_KEY"
	envSecret = "DISCOGS_SECRET"
)

// DefaultSettings returns the default configuration
func DefaultSettings() Settings {
	return Settings{
		VaultDir:      ".",
		ArtworkFolder: DefaultArtworkFolder,
		Template:      render.DefaultTemplate,
		UserAgent:     DefaultUserAgent,
	}
}

// Load reads settings from a YAML file, merging its values over the defaults.
// If path is empty, standard locations are searched. A missing file yields
// the defaults. Credentials from the environment (or a .env file) override
// the file.
func Load(path string) (Settings, error) {
	cfg := DefaultSettings()

	if path == "" {
		path = FindConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	cfg.VaultDir = ExpandHome(cfg.VaultDir)

	if cfg.TemplateFile != "" {
		tplPath := ExpandHome(cfg.TemplateFile)
		if !filepath.IsAbs(tplPath) && path != "" {
			tplPath = filepath.Join(filepath.Dir(path), tplPath)
		}
		data, err := os.ReadFile(tplPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read template file %s: %w", tplPath, err)
		}
		cfg.Template = string(data)
	}

	return cfg, nil
}

func (c *Settings) applyEnv() error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if v := os.Getenv(envKey); v != "" {
		c.DiscogsKey = v
	}
	if v := os.Getenv(envSecret); v != "" {
		c.DiscogsSecret = v
	}
	return nil
}

// Save writes settings to a YAML file. Credentials are stored, so the file
// is created with owner-only permissions.
func Save(cfg Settings, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./recordnote.yaml",
		"./recordnote.yml",
		filepath.Join(home, ".config", "recordnote", "config.yaml"),
		filepath.Join(home, ".config", "recordnote", "config.yml"),
		filepath.Join(home, ".recordnote.yaml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "recordnote", "config.yaml")
}

// DefaultLogPath returns the default log directory path
func DefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "recordnote", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// ArtworkDir returns the absolute-or-vault-relative directory artwork is stored in.
func (c *Settings) ArtworkDir() string {
	return filepath.Join(c.VaultDir, filepath.FromSlash(c.ArtworkFolder))
}

// HasCredentials reports whether both API credentials are set.
func (c *Settings) HasCredentials() bool {
	return c.DiscogsKey != "" && c.DiscogsSecret != ""
}

// Validate checks if the configuration is valid
func (c *Settings) Validate() error {
	if c.VaultDir == "" {
		return fmt.Errorf("vault_dir cannot be empty")
	}

	folder := strings.TrimSpace(c.ArtworkFolder)
	if folder == "" {
		return fmt.Errorf("artwork_folder cannot be empty")
	}
	if filepath.IsAbs(folder) || strings.HasPrefix(folder, "/") {
		return fmt.Errorf("artwork_folder must be relative to vault_dir, got %q", c.ArtworkFolder)
	}
	if folder == ".." || strings.HasPrefix(filepath.ToSlash(filepath.Clean(folder)), "../") {
		return fmt.Errorf("artwork_folder must stay inside vault_dir, got %q", c.ArtworkFolder)
	}

	if strings.TrimSpace(c.Template) == "" {
		return fmt.Errorf("template cannot be empty")
	}

	if c.ArtworkMaxSize < 0 {
		return fmt.Errorf("artwork_max_size cannot be negative, got %d", c.ArtworkMaxSize)
	}

	if (c.DiscogsKey == "") != (c.DiscogsSecret == "") {
		return fmt.Errorf("discogs_key and discogs_secret must be set together")
	}

	return nil
}
