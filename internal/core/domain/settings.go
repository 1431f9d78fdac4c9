package domain

import (
	"strings"
	"time"
)

// ClientSettings configures how the workspace client reaches its backend.
type ClientSettings struct {
	Backend  BackendSettings
	Poll     PollSettings
	AutoSync AutoSyncSettings
	Drive    DriveSettings
}

// BackendSettings holds the backend endpoint and credentials.
type BackendSettings struct {
	// URL is the API base URL, e.g. "https://app.example.com/api".
	URL string
	// Token is the bearer token sent on every request.
	Token string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// RequestsPerSecond caps the client's request rate.
	RequestsPerSecond float64
}

// PollSettings configures the reconciliation poller.
type PollSettings struct {
	Interval time.Duration
}

// AutoSyncSettings configures the drive auto-sync loop.
type AutoSyncSettings struct {
	Interval time.Duration
}

// DriveSettings configures the drive namespace.
type DriveSettings struct {
	Root string
}

// Defaults.
const (
	DefaultBackendURL        = "http://localhost:8080/api"
	DefaultBackendTimeout    = 30 * time.Second
	DefaultRequestsPerSecond = 10.0
	DefaultPollInterval      = 10 * time.Second
	DefaultAutoSyncInterval  = 3 * time.Second
	DefaultDriveRoot         = "/"
)

// DefaultClientSettings returns sensible defaults.
func DefaultClientSettings() ClientSettings {
	return ClientSettings{
		Backend: BackendSettings{
			URL:               DefaultBackendURL,
			Timeout:           DefaultBackendTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Poll:     PollSettings{Interval: DefaultPollInterval},
		AutoSync: AutoSyncSettings{Interval: DefaultAutoSyncInterval},
		Drive:    DriveSettings{Root: DefaultDriveRoot},
	}
}

// HasCredentials reports whether a backend token is configured.
func (s *BackendSettings) HasCredentials() bool {
	return strings.TrimSpace(s.Token) != ""
}

// MaskedToken returns the token with all but the last four characters hidden.
func (s *BackendSettings) MaskedToken() string {
	t := strings.TrimSpace(s.Token)
	if t == "" {
		return "(not set)"
	}
	if len(t) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + t[len(t)-4:]
}
