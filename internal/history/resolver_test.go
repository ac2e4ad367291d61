package history

import (
	"strings"
	"testing"
	"time"
)

// seedEpisodes saves three episodes, oldest first, one minute apart
func seedEpisodes(t *testing.T, store *Store, titles ...string) []*Episode {
	t.Helper()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	var out []*Episode
	for i, title := range titles {
		ep := sampleEpisode(title, base.Add(time.Duration(i)*time.Minute))
		if err := store.Save(ep); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		out = append(out, ep)
	}
	return out
}

func TestResolver_Aliases(t *testing.T) {
	store := newTestStore(t)
	eps := seedEpisodes(t, store, "Rivers", "Volcanoes", "Stars")
	resolver := NewResolver(store)

	tests := []struct {
		ref  string
		want string
	}{
		{"@last", eps[2].ID},
		{"@LAST", eps[2].ID},
		{"@first", eps[0].ID},
		{"1", eps[2].ID},
		{"3", eps[0].ID},
		{eps[1].ID, eps[1].ID},
		{"volcano", eps[1].ID},
		{"  stars  ", eps[2].ID},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, err := resolver.Resolve(tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.ref, err)
			}
			if id != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, id, tt.want)
			}
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	store := newTestStore(t)
	seedEpisodes(t, store, "Moon landing", "Moon phases", "Sun")
	resolver := NewResolver(store)

	tests := []struct {
		name    string
		ref     string
		errPart string
	}{
		{"empty", "  ", "empty reference"},
		{"index out of range", "4", "out of range"},
		{"index zero", "0", "out of range"},
		{"unknown id", "ep-000000000000", "episode not found"},
		{"no match", "oceans", "no episode matching"},
		{"ambiguous", "moon", "multiple episodes match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.ref)
			if err == nil {
				t.Fatalf("Resolve(%q) expected error", tt.ref)
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error = %v, want it to contain %q", err, tt.errPart)
			}
		})
	}
}

func TestResolver_NoEpisodes(t *testing.T) {
	resolver := NewResolver(newTestStore(t))

	_, err := resolver.Resolve("@last")
	if err == nil || !strings.Contains(err.Error(), "no episodes found") {
		t.Errorf("expected 'no episodes found', got %v", err)
	}
}

func TestResolver_ResolveEpisode(t *testing.T) {
	store := newTestStore(t)
	eps := seedEpisodes(t, store, "Rivers")
	resolver := NewResolver(store)

	ep, err := resolver.ResolveEpisode("@last")
	if err != nil {
		t.Fatalf("ResolveEpisode failed: %v", err)
	}
	if ep.ID != eps[0].ID || ep.Title != "Rivers" {
		t.Errorf("ResolveEpisode = %+v", ep)
	}
}

func TestListAliases(t *testing.T) {
	aliases := ListAliases()
	for _, want := range []string{"@last", "@first", "ep-"} {
		if !strings.Contains(aliases, want) {
			t.Errorf("ListAliases() missing %q", want)
		}
	}
}
