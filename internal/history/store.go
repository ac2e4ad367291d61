// Package history provides local storage for generated podcast episodes.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sidebuddy/sidebuddy/internal/config"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

// idPrefix marks episode IDs so references can tell them from titles
const idPrefix = "ep-"

// maxTitleRunes bounds titles derived from page text
const maxTitleRunes = 50

// Episode is a finished podcast: its inputs, the final transcript and the
// generated audio.
type Episode struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	SourceURL  string                `json:"source_url,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	Form       models.TranscriptForm `json:"form"`
	Transcript models.Transcript     `json:"transcript"`
	AudioURL   string                `json:"audio_url,omitempty"`
}

// Store manages episode persistence, one JSON file per episode
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a store rooted at dir, creating it if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &Store{
		baseDir: dir,
	}, nil
}

// DefaultStore creates a store in the configuration directory
func DefaultStore() (*Store, error) {
	dir, err := config.GetHistoryDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir)
}

// Dir returns the directory episodes are stored in
func (s *Store) Dir() string {
	return s.baseDir
}

// Save writes an episode. A missing ID, creation time or title is filled in
// before writing.
func (s *Store) Save(ep *Episode) error {
	if ep == nil {
		return fmt.Errorf("episode is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ep.ID == "" {
		ep.ID = generateEpisodeID()
	}
	if ep.CreatedAt.IsZero() {
		ep.CreatedAt = time.Now()
	}
	if strings.TrimSpace(ep.Title) == "" {
		ep.Title = defaultTitle(ep)
	}

	return s.saveEpisode(ep)
}

// Get retrieves an episode by ID
func (s *Store) Get(id string) (*Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadEpisode(id)
}

// List returns all episodes, newest first. Unreadable files are skipped.
func (s *Store) List() ([]*Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var episodes []*Episode
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		ep, err := s.loadEpisode(id)
		if err != nil {
			continue // Skip corrupted files
		}
		episodes = append(episodes, ep)
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].CreatedAt.After(episodes[j].CreatedAt)
	})

	return episodes, nil
}

// UpdateTitle renames an episode
func (s *Store) UpdateTitle(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ep, err := s.loadEpisode(id)
	if err != nil {
		return err
	}

	ep.Title = title
	return s.saveEpisode(ep)
}

// Delete removes an episode
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.episodePath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("episode not found: %s", id)
		}
		return fmt.Errorf("failed to delete episode: %w", err)
	}

	return nil
}

// ClearAll deletes every episode
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to read history directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.baseDir, entry.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// Internal methods

func (s *Store) episodePath(id string) string {
	return filepath.Join(s.baseDir, filepath.Base(id)+".json")
}

func (s *Store) loadEpisode(id string) (*Episode, error) {
	data, err := os.ReadFile(s.episodePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("episode not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read episode: %w", err)
	}

	var ep Episode
	if err := json.Unmarshal(data, &ep); err != nil {
		return nil, fmt.Errorf("failed to parse episode: %w", err)
	}

	return &ep, nil
}

func (s *Store) saveEpisode(ep *Episode) error {
	data, err := json.MarshalIndent(ep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal episode: %w", err)
	}

	if err := os.WriteFile(s.episodePath(ep.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write episode: %w", err)
	}

	return nil
}

func generateEpisodeID() string {
	return idPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// defaultTitle prefers the first transcript line, then the podcast name with
// the creation time, so episodes of one podcast stay distinguishable.
func defaultTitle(ep *Episode) string {
	stamp := ep.CreatedAt.Format("2006-01-02 15:04")

	if len(ep.Transcript) > 0 {
		if line := strings.TrimSpace(ep.Transcript[0].Text); line != "" {
			return clipTitle(line)
		}
	}
	if name := strings.TrimSpace(ep.Form.PodcastName); name != "" {
		return fmt.Sprintf("%s (%s)", clipTitle(name), stamp)
	}
	return fmt.Sprintf("Episode %s", stamp)
}

func clipTitle(title string) string {
	if utf8.RuneCountInString(title) > maxTitleRunes {
		return string([]rune(title)[:maxTitleRunes]) + "..."
	}
	return title
}
