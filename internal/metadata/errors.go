package metadata

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidURLFormat    = errors.New("no release ID found in URL")
	ErrRemoteLookupFailed  = errors.New("remote lookup failed")
	ErrNetwork             = errors.New("network error")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrAssetDownloadFailed = errors.New("artwork download failed")
	ErrAssetDirectory      = errors.New("artwork directory error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrMissingCredentials  = errors.New("discogs_key and discogs_secret are not set")
	ErrNoActiveDocument    = errors.New("no active document")
)

// LookupError reports a non-200 response from the provider. A 401 also
// matches ErrUnauthorized.
type LookupError struct {
	StatusCode int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("remote lookup failed: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *LookupError) Is(target error) bool {
	switch target {
	case ErrRemoteLookupFailed:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// UserMessage turns a pipeline error into the short text shown in a
// notification.
func UserMessage(err error) string {
	var lookupErr *LookupError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidURLFormat):
		return "Invalid release URL: no release ID found"
	case errors.Is(err, ErrMissingCredentials):
		return "Search requires discogs_key and discogs_secret in the config"
	case errors.Is(err, ErrUnauthorized):
		return "Discogs rejected the credentials, check your key and secret"
	case errors.As(err, &lookupErr):
		return fmt.Sprintf("Release lookup failed (HTTP %d)", lookupErr.StatusCode)
	case errors.Is(err, ErrNetwork):
		return "Network error while contacting Discogs"
	case errors.Is(err, ErrMalformedResponse):
		return "Discogs returned an unexpected response"
	case errors.Is(err, ErrAssetDirectory):
		return "Could not create the artwork folder"
	case errors.Is(err, ErrAssetDownloadFailed):
		return "Failed to download the cover image"
	case errors.Is(err, ErrNoActiveDocument):
		return "No active document to write to"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
