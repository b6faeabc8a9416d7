// Package artwork downloads release cover images into the vault.
//
// Files are named after the release title, lowercased with every character
// outside [a-z0-9] replaced by an underscore and "_cover.jpg" appended.
// Two releases whose titles sanitize to the same name share one file; the
// later download overwrites the earlier one.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"recordnote/internal/config"
	"recordnote/internal/logger"
	"recordnote/internal/metadata"
	"recordnote/pkg/utils"
)

const fileSuffix = "_cover.jpg"

// Fetcher stores cover images under the configured artwork folder.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	dir        string
	folder     string // slash-separated, relative to the vault
	maxSize    int
	logger     *logger.Logger
}

// New creates a Fetcher from the settings.
func New(cfg config.Settings, log *logger.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  cfg.UserAgent,
		dir:        cfg.ArtworkDir(),
		folder:     strings.Trim(filepath.ToSlash(cfg.ArtworkFolder), "/"),
		maxSize:    cfg.ArtworkMaxSize,
		logger:     log,
	}
}

// FileName derives the stored file name for a release title.
func FileName(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 'a' - 'A')
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + fileSuffix
}

// Fetch downloads imageURL and returns the stored file's path relative to
// the vault, using forward slashes. Nothing is left on disk when it fails.
func (f *Fetcher) Fetch(ctx context.Context, imageURL, title string) (string, error) {
	if err := utils.EnsureDir(f.dir); err != nil {
		return "", fmt.Errorf("%w: %v", metadata.ErrAssetDirectory, err)
	}

	name := FileName(title)
	dst := filepath.Join(f.dir, name)

	tmpPath, err := f.download(ctx, imageURL, f.dir, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", metadata.ErrAssetDownloadFailed, err)
	}

	if f.maxSize > 0 {
		if err := downscaleFile(tmpPath, f.maxSize); err != nil {
			f.logger.Warn("Keeping original artwork, resize failed: %v", err)
		}
	}

	if err := utils.MoveFile(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", metadata.ErrAssetDownloadFailed, err)
	}

	ref := path.Join(f.folder, name)
	f.logger.Debug("Saved artwork %s", ref)
	return ref, nil
}

// download streams the image into a hidden temp file inside dir and returns
// its path. The temp file is removed on any failure.
func (f *Fetcher) download(ctx context.Context, imageURL, dir, name string) (string, error) {
	if imageURL == "" {
		return "", errors.New("image URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create artwork request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("artwork request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artwork download returned %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create artwork file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write artwork: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close artwork file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to chmod artwork file: %w", err)
	}

	return tmpPath, nil
}
