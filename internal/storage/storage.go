// Package storage persists the per-list event manifest, the known-URL list
// and the raw listing pages under a local data directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tmoulton/seminar-events/internal/registry"
)

// Storage handles persistence for one data directory. Each subscribed list
// gets its own subdirectory holding downloaded listings, a urls.txt and a
// manifest.json.
type Storage struct {
	dataDir string
}

// Manifest is the on-disk shape of a list's resolved history.
type Manifest struct {
	Records   []*registry.Record `json:"records"`
	UpdatedAt string             `json:"updated_at"` // RFC3339
}

// New creates a Storage rooted at dataDir, creating it if needed.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) listDir(listID string) string {
	return filepath.Join(s.dataDir, listID)
}

func (s *Storage) manifestPath(listID string) string {
	return filepath.Join(s.listDir(listID), "manifest.json")
}

func (s *Storage) urlsPath(listID string) string {
	return filepath.Join(s.listDir(listID), "urls.txt")
}

// ListingPath returns the local path of a downloaded listing page.
func (s *Storage) ListingPath(listID, index string) string {
	return filepath.Join(s.listDir(listID), index)
}

// LoadHistory loads a list's resolved history, returning an empty history if
// no manifest exists yet.
func (s *Storage) LoadHistory(listID string) (*registry.History, error) {
	data, err := os.ReadFile(s.manifestPath(listID))
	if err != nil {
		if os.IsNotExist(err) {
			return registry.NewHistory(nil), nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return registry.NewHistory(manifest.Records), nil
}

// SaveHistory writes a list's resolved history back to its manifest.
func (s *Storage) SaveHistory(listID string, history *registry.History) error {
	if err := os.MkdirAll(s.listDir(listID), 0755); err != nil {
		return fmt.Errorf("creating list directory: %w", err)
	}

	manifest := Manifest{
		Records:   history.Records(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if err := os.WriteFile(s.manifestPath(listID), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// LoadURLs returns the known listing URLs for a list, oldest first. A
// missing urls.txt yields an empty slice.
func (s *Storage) LoadURLs(listID string) ([]string, error) {
	data, err := os.ReadFile(s.urlsPath(listID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading url list: %w", err)
	}

	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls, nil
}

// SaveURLs writes the known listing URLs for a list.
func (s *Storage) SaveURLs(listID string, urls []string) error {
	if err := os.MkdirAll(s.listDir(listID), 0755); err != nil {
		return fmt.Errorf("creating list directory: %w", err)
	}
	if err := os.WriteFile(s.urlsPath(listID), []byte(strings.Join(urls, "\n")), 0644); err != nil {
		return fmt.Errorf("writing url list: %w", err)
	}
	return nil
}

// SaveListing stores a downloaded listing page under its index name.
func (s *Storage) SaveListing(listID, index string, data []byte) error {
	if err := os.MkdirAll(s.listDir(listID), 0755); err != nil {
		return fmt.Errorf("creating list directory: %w", err)
	}
	if err := os.WriteFile(s.ListingPath(listID, index), data, 0644); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

// ReadListing returns a stored listing page, or nil if it was never
// downloaded. A missing listing is not an error; the announcement is simply
// skipped by the caller.
func (s *Storage) ReadListing(listID, index string) ([]byte, error) {
	data, err := os.ReadFile(s.ListingPath(listID, index))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading listing: %w", err)
	}
	return data, nil
}
