// Package credentials stores named Reconnector auth profiles for the CLI's
// reconnect command, so a caller can reference a saved profile by name
// instead of passing raw secrets on the command line each time.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultConfigDir is the default directory for suitkaise CLI configuration.
	DefaultConfigDir = "suitkaise"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "profiles.json"
	// FilePermissions for config files (read/write for owner only).
	FilePermissions = 0600
	// DirPermissions for config directories.
	DirPermissions = 0700
)

var (
	// ErrNoCurrentProfile indicates no profile is currently selected.
	ErrNoCurrentProfile = errors.New("no current profile set")
	// ErrProfileNotFound indicates the requested profile doesn't exist.
	ErrProfileNotFound = errors.New("profile not found")
)

// Profile holds the auth material for one Reconnector source: a named
// bundle of connection parameters and, where the reconnector uses
// bearer-style auth (HTTP session cookies, S3 STS credentials), the token
// pair needed to refresh it.
type Profile struct {
	ReconnectType string            `json:"reconnect_type"` // type key of the Reconnector this profile feeds
	Params        map[string]string `json:"params,omitempty"` // e.g. dsn, bucket, region, endpoint
	AccessToken   string            `json:"access_token,omitempty"`
	RefreshToken  string            `json:"refresh_token,omitempty"`
	ExpiresAt     time.Time         `json:"expires_at,omitempty"`
}

// IsExpired returns true if the access token has expired.
func (p *Profile) IsExpired() bool {
	if p.ExpiresAt.IsZero() {
		return false
	}
	// Consider expired if within 60 seconds of expiration
	return time.Now().Add(60 * time.Second).After(p.ExpiresAt)
}

// HasRefreshToken returns true if a refresh token is available.
func (p *Profile) HasRefreshToken() bool {
	return p.RefreshToken != ""
}

// Preferences represents user preferences for the CLI.
type Preferences struct {
	DefaultOutput string `json:"default_output,omitempty"` // table, json, yaml
	Color         string `json:"color,omitempty"`          // auto, always, never
}

// Config represents the complete CLI configuration file.
type Config struct {
	CurrentProfile string              `json:"current_profile"`
	Profiles       map[string]*Profile `json:"profiles"`
	Preferences    Preferences         `json:"preferences,omitempty"`
}

// Store manages auth profile storage and retrieval.
type Store struct {
	configPath string
	config     *Config
}

// NewStore creates a new profile store, loading any existing config file.
func NewStore() (*Store, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	store := &Store{
		configPath: configPath,
	}

	if err := store.load(); err != nil {
		if os.IsNotExist(err) {
			store.config = &Config{
				Profiles: make(map[string]*Profile),
			}
		} else {
			return nil, err
		}
	}

	return store, nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, DefaultConfigDir, ConfigFileName), nil
}

// load reads the config from disk.
func (s *Store) load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}

	s.config = &Config{}
	return json.Unmarshal(data, s.config)
}

// save writes the config to disk.
func (s *Store) save() error {
	dir := filepath.Dir(s.configPath)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configPath, data, FilePermissions)
}

// GetCurrentProfile returns the currently selected profile.
func (s *Store) GetCurrentProfile() (*Profile, error) {
	if s.config.CurrentProfile == "" {
		return nil, ErrNoCurrentProfile
	}

	p, ok := s.config.Profiles[s.config.CurrentProfile]
	if !ok {
		return nil, ErrProfileNotFound
	}

	return p, nil
}

// GetCurrentProfileName returns the name of the currently selected profile.
func (s *Store) GetCurrentProfileName() string {
	return s.config.CurrentProfile
}

// GetProfile returns a specific profile by name.
func (s *Store) GetProfile(name string) (*Profile, error) {
	p, ok := s.config.Profiles[name]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// ListProfiles returns all profile names.
func (s *Store) ListProfiles() []string {
	names := make([]string, 0, len(s.config.Profiles))
	for name := range s.config.Profiles {
		names = append(names, name)
	}
	return names
}

// SetProfile creates or updates a profile.
func (s *Store) SetProfile(name string, p *Profile) error {
	if s.config.Profiles == nil {
		s.config.Profiles = make(map[string]*Profile)
	}
	s.config.Profiles[name] = p
	return s.save()
}

// UseProfile switches the current profile.
func (s *Store) UseProfile(name string) error {
	if _, ok := s.config.Profiles[name]; !ok {
		return ErrProfileNotFound
	}
	s.config.CurrentProfile = name
	return s.save()
}

// RenameProfile renames a profile.
func (s *Store) RenameProfile(oldName, newName string) error {
	p, ok := s.config.Profiles[oldName]
	if !ok {
		return ErrProfileNotFound
	}

	delete(s.config.Profiles, oldName)
	s.config.Profiles[newName] = p

	if s.config.CurrentProfile == oldName {
		s.config.CurrentProfile = newName
	}

	return s.save()
}

// DeleteProfile removes a profile.
func (s *Store) DeleteProfile(name string) error {
	if _, ok := s.config.Profiles[name]; !ok {
		return ErrProfileNotFound
	}

	delete(s.config.Profiles, name)

	if s.config.CurrentProfile == name {
		s.config.CurrentProfile = ""
	}

	return s.save()
}

// UpdateTokens updates the bearer token pair for the current profile.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	p, err := s.GetCurrentProfile()
	if err != nil {
		return err
	}

	p.AccessToken = accessToken
	p.RefreshToken = refreshToken
	p.ExpiresAt = expiresAt

	return s.save()
}

// ClearCurrentProfile clears bearer credentials from the current profile,
// leaving its connection params intact.
func (s *Store) ClearCurrentProfile() error {
	p, err := s.GetCurrentProfile()
	if err != nil {
		return err
	}

	p.AccessToken = ""
	p.RefreshToken = ""
	p.ExpiresAt = time.Time{}

	return s.save()
}

// GetPreferences returns the user preferences.
func (s *Store) GetPreferences() Preferences {
	return s.config.Preferences
}

// SetPreferences updates the user preferences.
func (s *Store) SetPreferences(prefs Preferences) error {
	s.config.Preferences = prefs
	return s.save()
}

// ConfigPath returns the path to the config file.
func (s *Store) ConfigPath() string {
	return s.configPath
}
