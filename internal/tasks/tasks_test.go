package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/models"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/services"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
)

type fakeWatchlist struct {
	lists map[string][]string
}

func (f *fakeWatchlist) Watchlist(_ context.Context, username string) []string {
	return f.lists[username]
}

type fakeMedia struct {
	mu sync.Mutex

	movies    []services.MediaItem
	moviesErr error

	playlists    map[string][]services.MediaItem
	playlistErrs map[string]error
	addErrs      map[string]error

	movieCalls int
	added      map[string][]string
}

func (f *fakeMedia) MovieLibrary(_ context.Context) ([]services.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movieCalls++
	if f.moviesErr != nil {
		return nil, f.moviesErr
	}
	return f.movies, nil
}

func (f *fakeMedia) PlaylistItems(_ context.Context, playlistID string) ([]services.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.playlistErrs[playlistID]; err != nil {
		return nil, err
	}
	return f.playlists[playlistID], nil
}

func (f *fakeMedia) AddToPlaylist(_ context.Context, playlistID, _ string, itemIDs []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.addErrs[playlistID]; err != nil {
		return 0, err
	}
	if len(itemIDs) == 0 {
		return 0, nil
	}
	if f.added == nil {
		f.added = make(map[string][]string)
	}
	f.added[playlistID] = append(f.added[playlistID], itemIDs...)
	return len(itemIDs), nil
}

func resolvedLink(lb, emby, userID, playlistID string) *models.UserLink {
	return models.NewUserLink(0, lb, emby, userID, playlistID)
}

func newTestEngine(watchlist *fakeWatchlist, media *fakeMedia, workers int) *SyncEngine {
	return NewSyncEngine(SyncEngineOpts{
		Watchlist: watchlist,
		Media:     media,
		Workers:   workers,
		Logger:    shared.NewLogger(nil),
	})
}

func TestSyncEngineRunAll(t *testing.T) {
	library := []services.MediaItem{
		{ID: "m1", Name: "Heat", RunTimeTicks: ticksFor(170)},
		{ID: "m2", Name: "Alien", RunTimeTicks: ticksFor(117)},
		{ID: "m3", Name: "Stalker", RunTimeTicks: ticksFor(162)},
	}

	t.Run("syncs multiple users against a shared library", func(t *testing.T) {
		watchlist := &fakeWatchlist{lists: map[string][]string{
			"alice": {"Heat", "Alien"},
			"bob":   {"Stalker"},
		}}
		media := &fakeMedia{
			movies:    library,
			playlists: map[string][]services.MediaItem{},
		}

		links := []*models.UserLink{
			resolvedLink("alice", "Alice", "u1", "pl1"),
			resolvedLink("bob", "Bob", "u2", "pl2"),
		}

		result, err := newTestEngine(watchlist, media, 1).RunAll(context.Background(), links, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Succeeded != 2 || result.Failed != 0 || result.Skipped != 0 {
			t.Errorf("unexpected totals: %+v", result)
		}
		if media.movieCalls != 1 {
			t.Errorf("expected library fetched once, got %d fetches", media.movieCalls)
		}
		if got := media.added["pl1"]; len(got) != 2 || got[0] != "m1" || got[1] != "m2" {
			t.Errorf("unexpected additions for pl1: %v", got)
		}
		if got := media.added["pl2"]; len(got) != 1 || got[0] != "m3" {
			t.Errorf("unexpected additions for pl2: %v", got)
		}
		if result.Users[0].Added != 2 || result.Users[1].Added != 1 {
			t.Errorf("unexpected per-user counts: %+v", result.Users)
		}
	})

	t.Run("aborts pass when library fetch fails", func(t *testing.T) {
		media := &fakeMedia{moviesErr: fmt.Errorf("%w: listing failed", shared.ErrUpstream)}
		links := []*models.UserLink{resolvedLink("alice", "Alice", "u1", "pl1")}

		_, err := newTestEngine(&fakeWatchlist{}, media, 1).RunAll(context.Background(), links, nil)
		if err == nil {
			t.Fatal("expected error when library fetch fails")
		}
		if !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected upstream error, got %v", err)
		}
	})

	t.Run("one user's failure does not stop the rest", func(t *testing.T) {
		watchlist := &fakeWatchlist{lists: map[string][]string{
			"alice": {"Heat"},
			"bob":   {"Alien"},
		}}
		media := &fakeMedia{
			movies:       library,
			playlists:    map[string][]services.MediaItem{},
			playlistErrs: map[string]error{"pl1": fmt.Errorf("%w: status 500", shared.ErrUpstream)},
		}

		links := []*models.UserLink{
			resolvedLink("alice", "Alice", "u1", "pl1"),
			resolvedLink("bob", "Bob", "u2", "pl2"),
		}

		result, err := newTestEngine(watchlist, media, 1).RunAll(context.Background(), links, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Failed != 1 || result.Succeeded != 1 {
			t.Errorf("unexpected totals: %+v", result)
		}
		if result.Users[0].Err == nil {
			t.Error("expected first user's error recorded")
		}
		if got := media.added["pl2"]; len(got) != 1 || got[0] != "m2" {
			t.Errorf("expected second user synced, got %v", got)
		}
	})

	t.Run("skips links missing resolved identifiers", func(t *testing.T) {
		media := &fakeMedia{movies: library, playlists: map[string][]services.MediaItem{}}
		links := []*models.UserLink{
			models.NewUserLink(0, "alice", "Alice", "", ""),
			resolvedLink("bob", "Bob", "u2", "pl2"),
		}
		watchlist := &fakeWatchlist{lists: map[string][]string{"bob": {"Heat"}}}

		result, err := newTestEngine(watchlist, media, 1).RunAll(context.Background(), links, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Skipped != 1 || result.Succeeded != 1 {
			t.Errorf("unexpected totals: %+v", result)
		}
		if !result.Users[0].Skipped {
			t.Error("expected first user marked skipped")
		}
	})

	t.Run("suppresses duplicates already in the playlist", func(t *testing.T) {
		watchlist := &fakeWatchlist{lists: map[string][]string{"alice": {"Heat", "Alien"}}}
		media := &fakeMedia{
			movies: library,
			playlists: map[string][]services.MediaItem{
				"pl1": {{ID: "p1", Name: "Heat", RunTimeTicks: ticksFor(170)}},
			},
		}
		links := []*models.UserLink{resolvedLink("alice", "Alice", "u1", "pl1")}

		result, err := newTestEngine(watchlist, media, 1).RunAll(context.Background(), links, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		user := result.Users[0]
		if user.Duplicates != 1 || user.Added != 1 {
			t.Errorf("expected 1 duplicate and 1 addition, got %+v", user)
		}
		if got := media.added["pl1"]; len(got) != 1 || got[0] != "m2" {
			t.Errorf("unexpected additions: %v", got)
		}
	})

	t.Run("records unmatched titles without failing the user", func(t *testing.T) {
		watchlist := &fakeWatchlist{lists: map[string][]string{"alice": {"Solaris"}}}
		media := &fakeMedia{movies: library, playlists: map[string][]services.MediaItem{}}
		links := []*models.UserLink{resolvedLink("alice", "Alice", "u1", "pl1")}

		result, err := newTestEngine(watchlist, media, 1).RunAll(context.Background(), links, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		user := result.Users[0]
		if user.Err != nil {
			t.Errorf("unexpected user error: %v", user.Err)
		}
		if len(user.NoMatch) != 1 || user.NoMatch[0] != "Solaris" {
			t.Errorf("unexpected no-match list: %v", user.NoMatch)
		}
		if len(media.added) != 0 {
			t.Errorf("expected no additions, got %v", media.added)
		}
	})

	t.Run("parallel workers produce results in link order", func(t *testing.T) {
		lists := make(map[string][]string)
		var links []*models.UserLink
		for i := 0; i < 8; i++ {
			user := fmt.Sprintf("user%d", i)
			lists[user] = []string{"Heat"}
			links = append(links, resolvedLink(user, user, fmt.Sprintf("u%d", i), fmt.Sprintf("pl%d", i)))
		}
		media := &fakeMedia{movies: library, playlists: map[string][]services.MediaItem{}}

		result, err := newTestEngine(&fakeWatchlist{lists: lists}, media, 4).RunAll(context.Background(), links, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Succeeded != 8 {
			t.Fatalf("expected 8 successes, got %+v", result)
		}
		for i, user := range result.Users {
			if want := fmt.Sprintf("user%d", i); user.LetterboxdUsername != want {
				t.Errorf("result %d belongs to %s, want %s", i, user.LetterboxdUsername, want)
			}
		}
	})

	t.Run("progress updates are emitted without blocking", func(t *testing.T) {
		watchlist := &fakeWatchlist{lists: map[string][]string{"alice": {"Heat"}}}
		media := &fakeMedia{movies: library, playlists: map[string][]services.MediaItem{}}
		links := []*models.UserLink{resolvedLink("alice", "Alice", "u1", "pl1")}

		progress := make(chan ProgressUpdate, 16)
		_, err := newTestEngine(watchlist, media, 1).RunAll(context.Background(), links, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}
		if len(phases) == 0 || phases[0] != FetchLibrary {
			t.Errorf("expected fetch_library first, got %v", phases)
		}
	})
}
