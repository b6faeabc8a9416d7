package config

import (
	"os"
	"path/filepath"
	"testing"

	"recordnote/internal/render"
)

func TestValidate(t *testing.T) {
	valid := func() Settings {
		return Settings{
			VaultDir:       "/tmp/vault",
			ArtworkFolder:  "music/artwork",
			Template:       render.DefaultTemplate,
			DiscogsKey:     "key",
			DiscogsSecret:  "secret",
			ArtworkMaxSize: 600,
		}
	}

	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{
			name:   "valid settings",
			modify: func(c *Settings) {},
		},
		{
			name: "no credentials",
			modify: func(c *Settings) {
				c.DiscogsKey = ""
				c.DiscogsSecret = ""
			},
		},
		{
			name:    "key without secret",
			modify:  func(c *Settings) { c.DiscogsSecret = "" },
			wantErr: true,
		},
		{
			name:    "secret without key",
			modify:  func(c *Settings) { c.DiscogsKey = "" },
			wantErr: true,
		},
		{
			name:    "empty artwork folder",
			modify:  func(c *Settings) { c.ArtworkFolder = " " },
			wantErr: true,
		},
		{
			name:    "absolute artwork folder",
			modify:  func(c *Settings) { c.ArtworkFolder = "/var/art" },
			wantErr: true,
		},
		{
			name:    "artwork folder escaping vault",
			modify:  func(c *Settings) { c.ArtworkFolder = "../art" },
			wantErr: true,
		},
		{
			name:    "empty template",
			modify:  func(c *Settings) { c.Template = "\n" },
			wantErr: true,
		},
		{
			name:    "negative max size",
			modify:  func(c *Settings) { c.ArtworkMaxSize = -1 },
			wantErr: true,
		},
		{
			name:   "zero max size keeps originals",
			modify: func(c *Settings) { c.ArtworkMaxSize = 0 },
		},
		{
			name:    "empty vault dir",
			modify:  func(c *Settings) { c.VaultDir = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.ArtworkFolder != "music/artwork" {
		t.Errorf("ArtworkFolder = %q, want music/artwork", cfg.ArtworkFolder)
	}
	if cfg.Template != render.DefaultTemplate {
		t.Error("Template should default to render.DefaultTemplate")
	}
	if cfg.DiscogsKey != "" || cfg.DiscogsSecret != "" {
		t.Error("credentials should default to empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Setenv(envKey, "")
	t.Setenv(envSecret, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `vault_dir: /tmp/vault
discogs_key: abc
discogs_secret: def
artwork_max_size: 500
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.VaultDir != "/tmp/vault" {
		t.Errorf("VaultDir = %q", cfg.VaultDir)
	}
	if cfg.DiscogsKey != "abc" || cfg.DiscogsSecret != "def" {
		t.Errorf("credentials = %q/%q", cfg.DiscogsKey, cfg.DiscogsSecret)
	}
	if cfg.ArtworkMaxSize != 500 {
		t.Errorf("ArtworkMaxSize = %d", cfg.ArtworkMaxSize)
	}
	if cfg.ArtworkFolder != DefaultArtworkFolder {
		t.Errorf("ArtworkFolder should keep default, got %q", cfg.ArtworkFolder)
	}
	if cfg.Template != render.DefaultTemplate {
		t.Error("Template should keep default when not set in file")
	}
}

func TestLoadNotFound(t *testing.T) {
	t.Setenv(envKey, "")
	t.Setenv(envSecret, "")

	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	if cfg.ArtworkFolder != DefaultArtworkFolder {
		t.Errorf("expected default artwork folder, got %q", cfg.ArtworkFolder)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("vault_dir: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv(envKey, "env-key")
	t.Setenv(envSecret, "env-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("discogs_key: file-key\ndiscogs_secret: file-secret\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DiscogsKey != "env-key" || cfg.DiscogsSecret != "env-secret" {
		t.Errorf("credentials = %q/%q, want env values", cfg.DiscogsKey, cfg.DiscogsSecret)
	}
}

func TestLoadTemplateFile(t *testing.T) {
	t.Setenv(envKey, "")
	t.Setenv(envSecret, "")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "note.tpl"), []byte("# {{title}}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("template_file: note.tpl\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Template != "# {{title}}\n" {
		t.Errorf("Template = %q", cfg.Template)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(envKey, "")
	t.Setenv(envSecret, "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultSettings()
	cfg.DiscogsKey = "k"
	cfg.DiscogsSecret = "s"
	cfg.ArtworkFolder = "art/covers"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.ArtworkFolder != "art/covers" || loaded.DiscogsKey != "k" || loaded.Template != cfg.Template {
		t.Errorf("loaded settings differ: %+v", loaded)
	}
}

func TestExpandHome(t *testing.T) {
	home := homeDir()
	tests := []struct {
		input string
		want  string
	}{
		{"~/Vault", filepath.Join(home, "Vault")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~notslash", "~notslash"},
	}

	for _, tt := range tests {
		got := ExpandHome(tt.input)
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestArtworkDir(t *testing.T) {
	cfg := Settings{VaultDir: "/vault", ArtworkFolder: "music/artwork"}
	if got := cfg.ArtworkDir(); got != filepath.Join("/vault", "music", "artwork") {
		t.Errorf("ArtworkDir() = %q", got)
	}
}
