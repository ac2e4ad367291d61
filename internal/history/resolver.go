package history

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver resolves user-friendly references to episode IDs
type Resolver struct {
	store *Store
}

// NewResolver creates a new reference resolver
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve converts a user-friendly reference to an episode ID
//
// Supported references:
//   - "@last" - newest episode
//   - "@first" - oldest episode
//   - "1", "2", "3" - by index (1-based, newest first)
//   - "ep-..." - direct ID
//   - "substring" - match on title (error if several match)
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	episodes, err := r.store.List()
	if err != nil {
		return "", fmt.Errorf("failed to list episodes: %w", err)
	}
	if len(episodes) == 0 {
		return "", fmt.Errorf("no episodes found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		return episodes[0].ID, nil
	case "@first":
		return episodes[len(episodes)-1].ID, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(episodes) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(episodes))
		}
		return episodes[index-1].ID, nil
	}

	if strings.HasPrefix(ref, idPrefix) {
		for _, ep := range episodes {
			if ep.ID == ref {
				return ep.ID, nil
			}
		}
		return "", fmt.Errorf("episode not found: %s", ref)
	}

	refLower := strings.ToLower(ref)
	var matches []*Episode
	for _, ep := range episodes {
		if strings.Contains(strings.ToLower(ep.Title), refLower) {
			matches = append(matches, ep)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no episode matching '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		titles := make([]string, 0, len(matches))
		for _, m := range matches {
			titles = append(titles, fmt.Sprintf("'%s'", m.Title))
		}
		return "", fmt.Errorf("multiple episodes match '%s': %s. Use ID or be more specific",
			ref, strings.Join(titles, ", "))
	}
}

// ResolveEpisode resolves a reference and loads the episode
func (r *Resolver) ResolveEpisode(ref string) (*Episode, error) {
	id, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return r.store.Get(id)
}

// ListAliases returns information about supported references
func ListAliases() string {
	return `Supported references:
  @last          Newest episode
  @first         Oldest episode
  1, 2, 3        By index (1-based, newest first)
  ep-...         Direct episode ID
  "text"         Search by title substring`
}
